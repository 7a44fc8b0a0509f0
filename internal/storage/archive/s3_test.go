package archive

import (
	"strings"
	"testing"

	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "run/AAPL_strategy_analysis.csv", "run/AAPL_strategy_analysis.csv"},
		{"quanta", "run/AAPL_strategy_analysis.csv", "quanta/run/AAPL_strategy_analysis.csv"},
		{"quanta/", "run/AAPL_strategy_analysis.csv", "quanta/run/AAPL_strategy_analysis.csv"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.TrimSuffix(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if rel := s.relative(got); rel != tt.path {
			t.Errorf("relative(%q) = %q, want %q", got, rel, tt.path)
		}
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(config.S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", contentType("a/b.csv"))
	assert.Equal(t, "application/json", contentType("a/b.json"))
	assert.Equal(t, "application/octet-stream", contentType("a/b"))
}
