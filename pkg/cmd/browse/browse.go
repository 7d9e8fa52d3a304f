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
package browse

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/tui/browser"
	"github.com/hkfi/insight-notes/pkg/cmd/edit"
)

func NewCmdBrowse(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"b", "ui"},
		Short:   "Browse notes interactively and open them in the editor.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.StartEvents(cmd.Context())
			for {
				id, err := pick(cmd, s)
				if err != nil || id == 0 {
					return err
				}
				if err := edit.Run(cmd, s, id, true); err != nil {
					return err
				}
			}
		},
	}
}

func pick(cmd *cobra.Command, s *state.State) (int64, error) {
	m, err := browser.New(s)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return 0, err
	}
	fm, ok := final.(browser.Model)
	if !ok {
		return 0, nil
	}
	return fm.Chosen(), fm.Err()
}
