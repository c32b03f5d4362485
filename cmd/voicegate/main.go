// Command voicegate is the voice-biometric authentication CLI.
//
// Usage:
//
//	voicegate [flags] <command> [args]
//
// Commands:
//
//	enroll    - enroll a speaker from an audio file
//	verify    - verify an audio file against enrolled speakers
//	users     - list enrolled speakers and surviving artifacts
//	delete    - delete a speaker record and its artifact
//	watermark - render the enrollment watermark sweep to a WAV file
//
// Data (speaker database blob and enrollment artifacts) lives under
// --data-dir, default ~/.voicegate.
package main

import (
	"fmt"
	"os"

	"github.com/voicegate/voicegate/cmd/voicegate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
