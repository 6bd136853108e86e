package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"go.uber.org/zap"

	"recoilctl/internal/osutils"
	"recoilctl/internal/profile"
)

// ProfilesCmd groups the profile file subcommands.
type ProfilesCmd struct {
	Dir string `help:"Plugin directory holding weapons.yaml/.toml/.json. Defaults to ./plugins next to the executable." type:"path"`

	List  ProfilesListCmd  `cmd:"" default:"1" help:"List the weapons that would be loaded."`
	Check ProfilesCheckCmd `cmd:"" help:"Validate every profile file and report errors per file."`
	Init  ProfilesInitCmd  `cmd:"" help:"Write a starter profile file."`

	out io.Writer `kong:"-"`
}

func (c *ProfilesCmd) dir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return osutils.PluginDir()
}

// ProfilesListCmd prints the weapons the engine would load, in order.
type ProfilesListCmd struct{}

// Run loads the first usable profile file and prints one row per weapon.
func (l *ProfilesListCmd) Run(parent *ProfilesCmd) error {
	set, err := profile.Load(profile.SourcesIn(parent.dir())...)
	if err != nil {
		return err
	}
	out := writer(parent.out)
	fmt.Fprintf(out, "source: %s\n", set.Source())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tDEFAULT\tINITIAL\tSTEADY\tSLEEP\tACCEL\tCURVE")
	for i, w := range set.Weapons() {
		curve := string(w.CurveKind())
		if w.Custom() != nil {
			curve = "points"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%.2f\t%s\t%.1f\t%s\n",
			i, w.Name(), w.DefaultPull(), w.InitialDuration(), w.SteadyPull(), w.SleepTime(), w.Acceleration(), curve)
	}
	return tw.Flush()
}

// ProfilesCheckCmd validates every profile file in the plugin directory.
type ProfilesCheckCmd struct{}

// Run parses each existing file on its own, so a broken fallback is reported even
// when the primary file is fine.
func (c *ProfilesCheckCmd) Run(parent *ProfilesCmd, logger *zap.Logger) error {
	out := writer(parent.out)
	found := 0
	var errs []error
	for _, src := range profile.SourcesIn(parent.dir()) {
		if _, err := os.Stat(src.Path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		found++
		set, err := profile.Load(src)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s\n", err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d weapons)\n", src.Path, set.Len())
	}
	if found == 0 {
		return fmt.Errorf("no profile files in %s", parent.dir())
	}
	if len(errs) > 0 {
		logger.Debug("profile check failed", zap.Int("files", found), zap.Int("failed", len(errs)))
		return fmt.Errorf("%d of %d profile files are invalid", len(errs), found)
	}
	return nil
}

// ProfilesInitCmd writes a starter profile file.
type ProfilesInitCmd struct {
	Format string `help:"File format." enum:"yaml,toml,json" default:"yaml"`
	Force  bool   `help:"Overwrite an existing file."`
}

// Run refuses to overwrite an existing file unless Force is set.
func (c *ProfilesInitCmd) Run(parent *ProfilesCmd, logger *zap.Logger) error {
	format, err := profile.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	data, err := profile.Marshal(profile.Sample(), format)
	if err != nil {
		return err
	}
	path := filepath.Join(parent.dir(), profile.BaseName+"."+string(format))
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(parent.dir(), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote starter profiles", zap.String("path", path))
	fmt.Fprintln(writer(parent.out), path)
	return nil
}
