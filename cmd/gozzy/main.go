// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/config"
	"github.com/lassandro/gozzy/pkg/debugger"
	"github.com/lassandro/gozzy/pkg/encoding"
	log "github.com/lassandro/gozzy/pkg/log"
	"github.com/lassandro/gozzy/pkg/machine"
	"github.com/lassandro/gozzy/pkg/text"
)

var (
	configPath string
	logLevel   string
	logModules string
	width      int
	packed     bool

	cfg *config.Config
)

func setup(cmd *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.Load(configPath); err != nil {
		return err
	}

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if flags.Changed("log-modules") {
		cfg.Log.Modules = logModules
	}

	if flags.Changed("width") {
		cfg.Display.Width = width
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)

	if err != nil {
		return err
	}

	log.InitLogger(level, os.Stderr)
	log.EnableModules(cfg.Log.Modules)

	return nil
}

func load(path string) (*machine.Machine, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	return machine.Load(file)
}

func displayWidth() int {
	if cfg != nil && cfg.Display.Width > 0 {
		return cfg.Display.Width
	}

	return terminalWidth()
}

func runStory(cmd *cobra.Command, args []string) error {
	mc, err := load(args[0])

	if err != nil {
		return err
	}

	return mc.Run()
}

func info(cmd *cobra.Command, args []string) error {
	mc, err := load(args[0])

	if err != nil {
		return err
	}

	debugger.New(mc, cmd.OutOrStdout()).PrintHeader()
	return nil
}

func abbrevs(cmd *cobra.Command, args []string) error {
	mc, err := load(args[0])

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cols := displayWidth()

	for table := uint8(1); table <= 3; table++ {
		for index := uint8(0); index < 32; index++ {
			location, err := mc.Abbrevs.Location(table, index)

			if err != nil {
				return err
			}

			s, err := mc.Abbreviation(table, index)

			if err != nil {
				return fmt.Errorf("abbreviation %d/%d at %s: %w", table, index, location, err)
			}

			prefix := fmt.Sprintf("%d/%02d %s ", table, index, location)
			fmt.Fprintln(out, wrap(prefix+fmt.Sprintf("%q", s), cols, len(prefix)))
		}
	}

	return nil
}

func decode(cmd *cobra.Command, args []string) error {
	mc, err := load(args[0])

	if err != nil {
		return err
	}

	raw, err := encoding.DecodeHex(args[1])

	if err != nil {
		return err
	}

	var at address.Offsetter = address.ByteAddress(raw)

	if packed {
		at = address.PackedAddress(raw).StringOffset(mc.Header.Version)
	}

	s, err := mc.Text(at)

	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), wrap(s, displayWidth(), 0))
	return nil
}

func encode(cmd *cobra.Command, args []string) error {
	data, err := text.Encode(strings.Join(args, " "))

	if err != nil {
		return err
	}

	var sb strings.Builder

	for i, b := range data {
		if i > 0 && i%2 == 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sb.String())
	return nil
}

func debug(cmd *cobra.Command, args []string) error {
	mc, err := load(args[0])

	if err != nil {
		return err
	}

	historyFile := cfg.HistoryPath()

	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o755); err != nil {
			log.Warn(log.MachineModule, "command history not saved", "err", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(readlineConfig(historyFile, cfg.Debug.History))

	if err != nil {
		return err
	}

	defer rl.Close()

	newREPL(mc, rl, cmd.OutOrStdout(), historyFile, cfg.Debug.History).run()
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "gozzy story",
		Short:             "Z-machine story loader and inspector",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: setup,
		RunE:              runStory,
		SilenceUsage:      true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (default "+config.FileName+" in the user config dir)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&logModules, "log-modules", "", "Modules to trace, comma separated, or all")
	flags.IntVar(&width, "width", 0, "Wrap text at this many columns (0 = terminal width)")

	decodeCmd := &cobra.Command{
		Use:   "decode story 0x####",
		Short: "Decode the string at an address",
		Args:  cobra.ExactArgs(2),
		RunE:  decode,
	}
	decodeCmd.Flags().BoolVarP(&packed, "packed", "p", false, "Address is a packed string address")

	root.AddCommand(
		&cobra.Command{
			Use:   "info story",
			Short: "Show the header and memory map",
			Args:  cobra.ExactArgs(1),
			RunE:  info,
		},
		&cobra.Command{
			Use:   "abbrevs story",
			Short: "List the abbreviation table",
			Args:  cobra.ExactArgs(1),
			RunE:  abbrevs,
		},
		decodeCmd,
		&cobra.Command{
			Use:   "encode text...",
			Short: "Encode text as a z-string",
			Args:  cobra.MinimumNArgs(1),
			RunE:  encode,
		},
		&cobra.Command{
			Use:   "debug story",
			Short: "Inspect a story in the debugger",
			Args:  cobra.ExactArgs(1),
			RunE:  debug,
		},
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
