package main

import "wav2hls/cmd"

func main() {
	cmd.Execute()
}
