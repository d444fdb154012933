package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "kfs",
	Short: "kfs stores and retrieves large blobs sharded across bounded S-buckets",
	Long: `kfs is an embedded file store layered over an ordered key-value
engine. It shards blobs across a bounded set of S-buckets and chunks
each blob into fixed-size records within its shard.`,
}

var (
	tableDir string
	logLevel string
)

// used to patch over os.Exit during tests
var osExit = os.Exit

// Execute adds all child commands to the root command. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[error] %v\n", err)
		osExit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&tableDir, "dir", ".", "table directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "none", "log level: debug, info, none")
	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
}

func initConfig() {
	if cfgFile := os.Getenv("KFS_CONFIG"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("kfs")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
