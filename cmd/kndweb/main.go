// Command kndweb runs the KIND & DIVINE website and its maintenance tasks.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "KND"

type rootOptions struct {
	configFile string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "kndweb",
		Short: "KIND & DIVINE company website",
		Long: `kndweb serves the KIND & DIVINE public site and admin dashboard.

Configuration is read from kndweb.yaml (./, ./config or /etc/kndweb),
then from KND_* environment variables, e.g. KND_SESSION_SECRET or
KND_SMTP_HOST. A .env file in the working directory is loaded first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default kndweb.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "development logging")

	root.AddCommand(
		newServeCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newVerifyCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the kndweb version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "kndweb %s\n", version)
			},
		},
	)
	return root
}

// loadConfig reads the site config from file and environment. A missing
// config file is not an error.
func loadConfig(file string) (kndweb.SiteConfig, error) {
	var cfg kndweb.SiteConfig
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("kndweb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/kndweb")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve nested keys
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", kndweb.DefaultName)
	v.SetDefault("url", kndweb.DefaultURL)
	v.SetDefault("description", "Precision metal parts, mechanical components and intelligent hardware for AR.")
	v.SetDefault("email", "")
	v.SetDefault("phone", "")
	v.SetDefault("address", "")
	v.SetDefault("addr", kndweb.DefaultAddr)
	v.SetDefault("api_base_url", kndweb.DefaultAPIBaseURL)
	v.SetDefault("static_dir", kndweb.DefaultStaticDir)
	v.SetDefault("session_secret", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cache_ttl", kndweb.DefaultCacheTTL)
	v.SetDefault("redis_url", "")
	v.SetDefault("media_db", kndweb.DefaultMediaDB)
	v.SetDefault("marquee_speed", 15.0)
	v.SetDefault("frame_rate", 30)
	v.SetDefault("contact_limit", 5)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("smtp.insecure", false)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_url", "")
	v.SetDefault("s3.path_style", false)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
