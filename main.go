// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/pdxmaps/pdxmaps/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
