package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "--config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "server.json", "-a", ":8080"},
			allowed: allowed,
			want:    []string{"-c", "server.json"},
		},
		{
			name:    "equals form kept whole",
			args:    []string{"--config=server.json", "-a", ":8080"},
			allowed: allowed,
			want:    []string{"--config=server.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: allowed,
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: allowed,
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not consumed as a value",
			args:    []string{"-c", "-d", "dsn"},
			allowed: allowed,
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-a", ":8080", "-c", "server.json"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-a", ":8080", "-c", "server.json"},
		},
		{
			name:    "repeated flag survives",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty input",
			args:    []string{},
			allowed: allowed,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/etc/mail/server.json"}
		assert.Equal(t, "/etc/mail/server.json", JsonConfigFlags())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"server", "-config", "/etc/mail/alt.json"}
		assert.Equal(t, "/etc/mail/alt.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"server", "-d", "postgres://..."}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last one wins", func(t *testing.T) {
		os.Args = []string{"server", "-c", "/a.json", "-config", "/b.json"}
		assert.Equal(t, "/b.json", JsonConfigFlags())
	})
}
