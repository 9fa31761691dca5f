// SPDX-License-Identifier: MPL-2.0

package main

import cmd "swordctl/cmd/swordctl"

func main() {
	cmd.Execute()
}
