package main

import (
	_ "git.handmade.network/hmn/pngview/src/tools"
	"git.handmade.network/hmn/pngview/src/viewer"
)

func main() {
	viewer.ViewerCommand.Execute()
}
