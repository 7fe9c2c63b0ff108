package main

import "github.com/claudianadalin/pinecone/cmd"

func main() {
	cmd.Execute()
}
