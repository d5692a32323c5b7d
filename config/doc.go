// Package config loads executor settings from defaults, a YAML file,
// environment variables and command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// Environment variables use the SQLEXEC_ prefix; a double underscore separates
// nested keys:
//
//	SQLEXEC_BACKEND=postgres
//	SQLEXEC_CONNECTION_STRING=postgres://app@db/app
//	SQLEXEC_RETRY__MAX_ATTEMPTS=5
//
// Example:
//
//	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
//	config.RegisterFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//
//	settings, err := config.Load("sqlexec.yaml", fs)
//	if err != nil {
//	    return err
//	}
//	exec, err := sqlexec.Open(ctx, settings)
package config
