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
package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hkfi/insight-notes/internal/constants"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/pkg/cmd/root"
)

func Execute() {
	v := viper.New()

	// Global flags feed the config before state is built.
	pre := pflag.NewFlagSet(constants.AppName, pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	root.BindFlags(pre, v)
	if err := pre.Parse(os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		cobra.CheckErr(err)
	}

	s, err := state.NewState(v, os.Stderr)
	cobra.CheckErr(err)

	rootCmd, err := root.NewCmdRoot(s)
	if err != nil {
		_ = s.Close()
		cobra.CheckErr(err)
	}

	execErr := rootCmd.ExecuteContext(context.Background())
	if err := s.Close(); err != nil {
		s.Log.Warn().Err(err).Msg("shutdown")
	}
	if execErr != nil {
		os.Exit(1)
	}
}
