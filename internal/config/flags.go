package config

import (
	"flag"
	"os"

	"github.com/hippostore/hippo/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the credential-exchange service
//	-o string   client owner id
//	-d string   local object data directory
//	-w int      upload worker count
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, so subcommand arguments do not
// interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-d", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the credential-exchange service")
	fs.StringVar(&cfg.ClientOwnerID, "o", cfg.ClientOwnerID, "client owner id")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local object data directory")
	fs.IntVar(&cfg.UploadWorkers, "w", cfg.UploadWorkers, "upload worker count")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
