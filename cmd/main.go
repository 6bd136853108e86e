// recoilctl - recoil compensation and auto-click engine
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"recoilctl/internal/logging"
	"recoilctl/internal/osutils"
)

var version = "0.3.0"

func main() {
	jsonPaths, yamlPaths, tomlPaths := optionFiles(findUserConfig(os.Args[1:]), osutils.BaseDir())

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("recoilctl"),
		kong.Description("Recoil compensation and auto-click engine"),
		kong.UsageOnError(),
		// Option files are lower priority than flags.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, err := logging.New(logging.Options{Level: cli.Log.Level, File: cli.Log.File, Dev: cli.Log.Dev})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx.Bind(logger, &cli.Profiles)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// optionFiles returns the candidate option files per format. An explicit --config
// path is tried before the files next to the executable.
func optionFiles(user, base string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if user != "" {
		switch strings.ToLower(filepath.Ext(user)) {
		case ".json":
			jsonPaths = append(jsonPaths, user)
		case ".toml":
			tomlPaths = append(tomlPaths, user)
		default:
			yamlPaths = append(yamlPaths, user)
		}
	}
	jsonPaths = append(jsonPaths, filepath.Join(base, "recoilctl.json"))
	yamlPaths = append(yamlPaths, filepath.Join(base, "recoilctl.yaml"), filepath.Join(base, "recoilctl.yml"))
	tomlPaths = append(tomlPaths, filepath.Join(base, "recoilctl.toml"))
	return jsonPaths, yamlPaths, tomlPaths
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("RECOILCTL_CONFIG")
}
