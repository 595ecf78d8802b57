package host

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// startCommand launches a detached process; replaced in tests
var startCommand = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// openerCommand returns the platform's "open with default app" command
func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// OpenInExternalViewer hands path to the system's default application.
// It returns an empty string on success and the failure text otherwise.
func OpenInExternalViewer(path string) string {
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("cannot open %s: %v", path, err)
	}

	name, args := openerCommand(runtime.GOOS, path)
	if err := startCommand(name, args...); err != nil {
		return fmt.Sprintf("%s failed: %v", name, err)
	}
	return ""
}
