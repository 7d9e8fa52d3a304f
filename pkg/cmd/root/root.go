/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hkfi/insight-notes/internal/constants"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/pkg/cmd/browse"
	"github.com/hkfi/insight-notes/pkg/cmd/edit"
	"github.com/hkfi/insight-notes/pkg/cmd/note"
	"github.com/hkfi/insight-notes/pkg/cmd/notes"
	"github.com/hkfi/insight-notes/pkg/cmd/related"
	"github.com/hkfi/insight-notes/pkg/cmd/search"
	"github.com/hkfi/insight-notes/pkg/cmd/settings"
	"github.com/hkfi/insight-notes/pkg/cmd/tags"
	"github.com/hkfi/insight-notes/pkg/cmd/words"
)

var globalFlags = []struct {
	name, key, usage string
}{
	{"url", "bridge.url", "Backend base URL"},
	{"token", "bridge.token", "Backend bearer token"},
	{"log-level", "log.level", "Log level (debug, info, warn, error)"},
	{"log-format", "log.format", "Log format (console or json)"},
}

// BindFlags defines the global flags on fs and binds them to their config
// keys in v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	addFlags(fs)
	for _, f := range globalFlags {
		_ = v.BindPFlag(f.key, fs.Lookup(f.name))
	}
}

func addFlags(fs *pflag.FlagSet) {
	for _, f := range globalFlags {
		fs.String(f.name, "", f.usage)
	}
}

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Browse and edit notes from the terminal.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			A terminal client for the insight notes backend. Lists, searches and
			edits notes with autosave, and follows backend change events.

			Run without a command to see recent notes and tags.
		`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return notes.Home(cmd, s)
		},
	}

	addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		notes.NewCmdNotes(s),
		note.NewCmdNote(s),
		tags.NewCmdTags(s),
		search.NewCmdSearch(s),
		related.NewCmdRelated(s),
		words.NewCmdWords(s),
		edit.NewCmdEdit(s),
		browse.NewCmdBrowse(s),
		settings.NewCmdSettings(s.Config),
	)

	return cmd, nil
}
