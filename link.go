package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a failed write never leaves a partial file at path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jive-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// objectFormat is nasm's -f value for t.
func objectFormat(t Target) string {
	if t == TargetMacOS {
		return "macho64"
	}
	return "elf64"
}

// linkExecutable assembles asmFile with nasm and links it against the C
// library with cc, producing exeFile.
func linkExecutable(asmFile, exeFile string, t Target) error {
	objFile := exeFile + ".o"
	defer os.Remove(objFile)

	nasm := exec.Command("nasm", "-f", objectFormat(t), "-o", objFile, asmFile)
	if out, err := nasm.CombinedOutput(); err != nil {
		return fmt.Errorf("nasm failed: %w\nOutput: %s", err, out)
	}

	var ccArgs []string
	if t == TargetLinux {
		// The program brings its own _start and uses absolute addresses for
		// C calls.
		ccArgs = append(ccArgs, "-nostartfiles", "-no-pie")
	}
	ccArgs = append(ccArgs, "-o", exeFile, objFile)
	cc := exec.Command("cc", ccArgs...)
	if out, err := cc.CombinedOutput(); err != nil {
		return fmt.Errorf("cc failed: %w\nOutput: %s", err, out)
	}
	return nil
}

// haveToolchain reports whether nasm and cc are on PATH.
func haveToolchain() bool {
	for _, tool := range []string{"nasm", "cc"} {
		if _, err := exec.LookPath(tool); err != nil {
			return false
		}
	}
	return true
}
