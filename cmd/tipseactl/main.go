package main

import "github.com/tipsea/tipsea-solana/cmd/tipseactl/cmd"

func main() {
	cmd.Execute()
}
