// Command chatbot is a terminal client for a tool-calling chatbot API.
package main

import "github.com/diogo/chatbot/internal/commands"

func main() {
	commands.Execute()
}
