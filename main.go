package main

import "teacher-gallery-backend/cmd"

func main() {
	cmd.Run()
}
