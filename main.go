package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(os.Args[2:])
	case "dump":
		err = runDump(os.Args[2:])
	case "view":
		err = runView(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "config":
		err = runConfig()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Printf("unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Println(fatalStyle.Render("FATAL:") + " " + err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("midi2bms - compile standard MIDI files to BMS sequence data")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  compile [-log] [-ppqn N] [-timing CH] [-o DIR] [-debug] in.mid...")
	fmt.Println("                  write <name>.bms (and <name>.cit with a timing track)")
	fmt.Println("  dump file       print a listing of a .bms file or the records of a .cit file")
	fmt.Println("  view file.bms   browse a .bms file")
	fmt.Println("  info in.mid     summarize the normalized timeline of a MIDI file")
	fmt.Println("  config          write the default config file if there is none")
}
