package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dyscraper/pkg/config"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metadata"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Artifact names used in summaries and metrics labels
const (
	ArtifactJSON = "json"
	ArtifactText = "txt"
	ArtifactYAML = "yaml"
)

// Recorder receives per-artifact record counts. *metrics.Collector satisfies it.
type Recorder interface {
	Exported(artifact string, count int)
}

// Summary describes what an export wrote
type Summary struct {
	JSONCount int
	URLCount  int
	YAMLCount int
	// Files lists the written paths in write order
	Files []string
	// Empty is set when there was nothing to export
	Empty bool
}

// Exporter writes record sets to the output directory
type Exporter struct {
	dir         string
	prefix      string
	json        bool
	text        bool
	yaml        bool
	timestamped bool

	now      func() time.Time
	recorder Recorder
	logger   logger.Logger
}

// Option customizes an Exporter
type Option func(*Exporter)

// WithRecorder registers a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) {
		e.recorder = r
	}
}

// WithClock overrides the clock used for timestamped names
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an Exporter for the given output settings
func New(cfg *config.OutputConfig, log logger.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "douyin-video"
	}

	e := &Exporter{
		dir:         cfg.Directory,
		prefix:      prefix,
		json:        cfg.JSON,
		text:        cfg.Text,
		yaml:        cfg.YAML,
		timestamped: cfg.Timestamped,
		now:         time.Now,
		logger:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes every selected artifact for records. Records are written in
// the order given.
func (e *Exporter) Export(records []metadata.Record) (*Summary, error) {
	if len(records) == 0 {
		e.logger.Warn("No videos to export")
		return &Summary{Empty: true}, nil
	}
	if !e.json && !e.text && !e.yaml {
		return nil, fmt.Errorf("no export format selected")
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	suffix := ""
	if e.timestamped {
		suffix = "-" + FileTimestamp(e.now())
	}

	summary := &Summary{}

	if e.json {
		data, err := encodeJSON(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		path, err := e.write(fmt.Sprintf("%s-data%s.json", e.prefix, suffix), data)
		if err != nil {
			return nil, err
		}
		summary.JSONCount = len(records)
		summary.Files = append(summary.Files, path)
		e.record(ArtifactJSON, path, summary.JSONCount)
	}

	if e.text {
		urls := metadata.VideoURLs(records)
		path, err := e.write(fmt.Sprintf("%s-links%s.txt", e.prefix, suffix), []byte(strings.Join(urls, "\n")))
		if err != nil {
			return nil, err
		}
		summary.URLCount = len(urls)
		summary.Files = append(summary.Files, path)
		e.record(ArtifactText, path, summary.URLCount)
	}

	if e.yaml {
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		path, err := e.write(fmt.Sprintf("%s-data%s.yaml", e.prefix, suffix), data)
		if err != nil {
			return nil, err
		}
		summary.YAMLCount = len(records)
		summary.Files = append(summary.Files, path)
		e.record(ArtifactYAML, path, summary.YAMLCount)
	}

	return summary, nil
}

// OutputDir returns the directory artifacts are written to
func (e *Exporter) OutputDir() string {
	return e.dir
}

func (e *Exporter) write(name string, data []byte) (string, error) {
	path := filepath.Join(e.dir, name)
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func (e *Exporter) record(artifact, path string, count int) {
	e.logger.InfoWithFields("Export written", map[string]interface{}{
		"artifact": artifact,
		"path":     path,
		"count":    count,
	})
	if e.recorder != nil {
		e.recorder.Exported(artifact, count)
	}
}

// FileTimestamp formats t as a filename-safe UTC ISO timestamp, e.g.
// 2024-03-01T10-20-30-123Z
func FileTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// encodeJSON indents with two spaces and leaves '&' in URLs unescaped
func encodeJSON(records []metadata.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
