package main

import (
	"fmt"
	"io"
	"os"
)

// CLI is the command line surface. Every flag can also come from an option file.
type CLI struct {
	Config string `help:"Option file (json, yaml or toml)." type:"path" env:"RECOILCTL_CONFIG"`

	Log struct {
		Level string `help:"Log level." enum:"debug,info,warn,error" default:"info"`
		File  string `help:"Also write logs to this file." type:"path"`
		Dev   bool   `help:"Human readable console logs."`
	} `embed:"" prefix:"log-"`

	Run      RunCmd      `cmd:"" default:"withargs" help:"Run the engine (default)."`
	Profiles ProfilesCmd `cmd:"" help:"Inspect or create weapon profile files."`
	Version  VersionCmd  `cmd:"" help:"Print the version."`
}

// VersionCmd prints the build version.
type VersionCmd struct {
	out io.Writer `kong:"-"`
}

// Run writes the version line.
func (c *VersionCmd) Run() error {
	_, err := fmt.Fprintf(writer(c.out), "recoilctl version %s\n", version)
	return err
}

func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
