// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "partedit"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - MBR partition editor",
	}

	rootCmd.PersistentFlags().String("disk-dir", ".", "directory holding disk0.img, disk1.img, ... image files")
	rootCmd.PersistentFlags().String("registry", "registry.yaml", "path to the simulated firmware/registry fixture")
	rootCmd.PersistentFlags().Int("max-disks", 8, "number of disk indices to probe")
	rootCmd.PersistentFlags().String("log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().Bool("no-log", false, "disable logging entirely, overriding --log-level")
	rootCmd.PersistentFlags().Bool("mmap", false, "memory-map disk images instead of reading them with pread (not supported on windows)")

	rootCmd.AddCommand(DefineListCommand())
	rootCmd.AddCommand(DefineCreateCommand())
	rootCmd.AddCommand(DefineDeleteCommand())
	rootCmd.AddCommand(DefineActivateCommand())
	rootCmd.AddCommand(DefineWriteCommand())
	rootCmd.AddCommand(DefineDumpCommand())
	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineReportCommand())
	rootCmd.AddCommand(DefinePreviewCommand())

	return rootCmd.Execute()
}
