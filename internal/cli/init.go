package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	if wrote {
		fmt.Printf("Initialized %s. Edit config.yaml and set %s and %s before the first check.\n",
			configDir, config.DefaultTokenEnv, config.DefaultChatIDEnv)
	} else {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# blogwatch configuration

telegram:
  token_env: BOT_TOKEN
  chat_id_env: CHAT_ID
  send_delay: 1s

watch:
  interval: 1h
  timeout: 10s
  announce_start: false

track:
  # seen-set, last-link or last-date
  mode: seen-set
  # notify or seed
  first_run: notify
  path: .blogwatch/state.db
  journal: .blogwatch/outbox.jsonl

sources:
  - name: Helm
    url: https://helm.sh/blog/
    feed: https://helm.sh/blog/index.xml
    icon: "⎈"
    parser: helm
    limit: 5
  # - name: Kubernetes
  #   url: https://kubernetes.io/blog/
  #   parser: generic
`
