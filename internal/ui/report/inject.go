package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InjectMarkdown replaces the text between the logicdoc start/end comments
// for marker in filePath. The file is rewritten via temp file and rename.
func InjectMarkdown(filePath, marker, content string) error {
	existing, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next, err := ReplaceBetweenMarkers(string(existing), marker, content)
	if err != nil {
		return err
	}
	if next == string(existing) {
		return nil
	}
	return WriteFileAtomic(filePath, []byte(next))
}

// WriteFileAtomic writes data next to path and renames it into place,
// keeping the existing file mode when there is one.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".logicdoc-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.Write(data); err != nil {
		writeErr = fmt.Errorf("write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp file %q: %w", tmpName, err)
	}
	if writeErr == nil {
		if err := os.Chmod(tmpName, mode); err != nil {
			writeErr = fmt.Errorf("chmod temp file %q: %w", tmpName, err)
		}
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace file %q: %w", path, err)
	}
	return nil
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- logicdoc:%s:start -->", marker)
	end := fmt.Sprintf("<!-- logicdoc:%s:end -->", marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	body := strings.TrimRight(replacement, "\r\n")
	if newline != "\n" {
		body = strings.ReplaceAll(body, "\n", newline)
	}

	return prefix + newline + body + newline + suffix, nil
}
