package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileWriter receives zerolog JSON entries and writes them to a rotating log
// file as plain lines: "2006-01-02 15:04:05.000 [LEVEL] component: message key=value".
type FileWriter struct {
	mu   sync.Mutex
	file *lumberjack.Logger
}

// NewFileWriter creates a rotating file writer (10 MB per file, 5 backups, 30 days).
func NewFileWriter(path string) *FileWriter {
	_ = os.MkdirAll(filepath.Dir(path), 0700)
	return &FileWriter{
		file: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		},
	}
}

// Write implements io.Writer for zerolog.
func (w *FileWriter) Write(p []byte) (int, error) {
	line := formatEntry(p, time.Now())

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write([]byte(line)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying log file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// formatEntry turns one zerolog JSON entry into a file line.
// Entries that are not JSON are written through unchanged.
func formatEntry(p []byte, now time.Time) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		s := string(p)
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		return s
	}

	level, _ := fields["level"].(string)
	if level == "" {
		level = "info"
	}
	component, _ := fields["component"].(string)
	if component == "" {
		component = "app"
	}
	msg, _ := fields["message"].(string)

	delete(fields, "level")
	delete(fields, "time")
	delete(fields, "message")
	delete(fields, "component")

	var b strings.Builder
	b.WriteString(now.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(strings.ToUpper(level))
	b.WriteString("] ")
	b.WriteString(component)
	b.WriteString(": ")
	b.WriteString(msg)

	for _, k := range sortedKeys(fields) {
		v, _ := json.Marshal(fields[k])
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.Write(v)
	}
	b.WriteString("\n")
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
