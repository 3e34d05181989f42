////////////////////////////////////////////////////////////////////////////////
// Donatio: milestone-gated crowdfunding with donor governance
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"github.com/DavideSigurta/Donatio-sub000/cli"
)

func main() {
	cli.Execute()
}
