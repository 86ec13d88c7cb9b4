// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/khonsulabs/interner/pkg/util/collection/hash"
	"github.com/khonsulabs/interner/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned int, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Determine the hash algorithm selected on the command line, or exit if it is
// not recognised.
func getAlgorithm(cmd *cobra.Command) hash.Algorithm {
	algorithm, err := hash.ParseAlgorithm(GetString(cmd, "hash"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return algorithm
}

// Write a report in the format selected on the command line.  Structured
// formats (yaml and json) serialise the report itself, whilst the table format
// renders the given table.
func writeReport(cmd *cobra.Command, report any, table *termio.TablePrinter) {
	var err error
	//
	switch format := GetString(cmd, "format"); format {
	case "table":
		// Fit table to terminal (if applicable)
		if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
			if width, _, err := term.GetSize(fd); err == nil && width > 0 {
				table.SetMaxWidths(uint(width) / 2)
			}
		}
		//
		err = table.Print(os.Stdout)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		//
		if err = enc.Encode(report); err == nil {
			err = enc.Close()
		}
	case "json":
		var bytes []byte
		//
		if bytes, err = json.MarshalIndent(report, "", "  "); err == nil {
			_, err = fmt.Fprintln(os.Stdout, string(bytes))
		}
	default:
		fmt.Printf("unknown output format \"%s\"\n", format)
		os.Exit(1)
	}
	// Handle error
	if err != nil {
		log.Error(err)
		os.Exit(2)
	}
}
