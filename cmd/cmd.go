// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/islandtune/internal/tasks"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command. Playback flags are persistent so every subcommand sees them.
func newApp(r *Runner) *cli.Command {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	return &cli.Command{
		Name:     "islandtune",
		Usage:    "Play island tunes written in a tiny note notation",
		Version:  "0.3.0",
		Writer:   r.output,
		Flags:    playbackFlags(),
		Before:   r.Configure,
		Action:   r.Root,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		playCommand, compileCommand, listCommand, exportCommand, libraryCommand, historyCommand, menuCommand, serveCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func playbackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read the tune from a file",
		},
		&cli.StringFlag{
			Name:    "tune",
			Aliases: []string{"t"},
			Usage:   "Tune to play",
		},
		&cli.FloatFlag{
			Name:    "duration",
			Aliases: []string{"D"},
			Usage:   "Base note duration in seconds (default from config, 0.1)",
		},
		&cli.FloatFlag{
			Name:    "volume",
			Aliases: []string{"V"},
			Usage:   "Volume between 0 and 1 (default from config, 0.3)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print the tune before playing it",
		},
		&cli.BoolFlag{
			Name:  "mute",
			Usage: "Keep time without sound",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
	}
}

// playCommand plays a catalog tune or raw notation
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a tune by name, menu number or notation",
		ArgsUsage: "<name|number|notation>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "choice"},
		},
		Action: r.Play,
	}
}

// compileCommand prints the event table without playing
func compileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Show the note events a tune compiles to",
		ArgsUsage: "<name|number|notation>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "choice"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV instead of a table",
			},
		},
		Action: r.Compile,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the tune catalog",
		Action:  r.List,
	}
}

// exportCommand renders tunes to MIDI files
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tunes as MIDI files",
		Commands: []*cli.Command{
			{
				Name:      "midi",
				Usage:     "Export one tune as a MIDI file",
				ArgsUsage: "<name|number|notation>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "choice"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: <tune name>.mid)",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Track name stored in the file",
					},
				},
				Action: r.ExportMIDI,
			},
			{
				Name:  "all",
				Usage: "Export the whole catalog as MIDI files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: midi_export_{epoch})",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent workers",
						Value:   tasks.DefaultWorkers,
					},
				},
				Action: r.ExportAll,
			},
		},
	}
}

// libraryCommand manages saved tunes
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage saved tunes",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save a tune under a name",
				ArgsUsage: "<name> <notation>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "notation"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Overwrite a saved tune with the same name",
					},
				},
				Action: r.LibrarySave,
			},
			{
				Name:   "list",
				Usage:  "List saved tunes",
				Action: r.LibraryList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a saved tune",
				ArgsUsage: "<name>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.LibraryDelete,
			},
			{
				Name:      "import",
				Usage:     "Import tunes from a YAML tune book",
				ArgsUsage: "<file.yaml>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Overwrite saved tunes with the same name",
					},
				},
				Action: r.LibraryImport,
			},
			{
				Name:      "export",
				Usage:     "Export saved tunes to a YAML tune book",
				ArgsUsage: "<file.yaml>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tunes",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of plays to show",
				Value:   20,
			},
		},
		Action: r.History,
	}
}

// menuCommand returns the interactive menu, also opened by running islandtune without a tune.
func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "menu",
		Aliases: []string{"tui", "interactive"},
		Usage:   "Pick tunes from an interactive menu",
		Action:  r.Menu,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the tune library",
		Action: r.Setup,
	}
}
