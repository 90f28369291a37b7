package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benz9527/xrbtree/lib/xlog"
)

var (
	logLevel   string
	logEncoder string
	logger     xlog.XLogger
)

var rootCmd = &cobra.Command{
	Use:   "xrbtree",
	Short: "Red-black tree ordered map playground",
	Long: `
	xrbtree replays the reference red-black tree scenarios and drives
	random workloads against the tree with invariant validation.
`,
	Example: `  $ xrbtree demo --log-level debug
  $ xrbtree workload --total 100000 --remove-ratio 0.3 --stats
  `,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		enc, err := parseLogEncoder(logEncoder)
		if err != nil {
			return err
		}
		logger = xlog.NewXLogger(
			xlog.WithXLoggerWriter(cmd.ErrOrStderr()),
			xlog.WithXLoggerEncoder(enc),
			xlog.WithXLoggerLevel(xlog.ParseLogLevel(logLevel)),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if logger == nil {
			return nil
		}
		// Syncing a terminal returns EINVAL, ignore it.
		_ = logger.Sync()
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", xlog.LogLevelInfo.String(), "log level: DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&logEncoder, "log-encoder", "text", "log encoder: json or text")
	rootCmd.AddCommand(demoCmd, workloadCmd)
}

func parseLogEncoder(enc string) (xlog.LogEncoderType, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "json":
		return xlog.JSON, nil
	case "text", "plain", "console":
		return xlog.PlainText, nil
	default:
	}
	return xlog.JSON, fmt.Errorf("[xrbtree] unknown log encoder %q", enc)
}
