package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/go-recordstore/recordstore/store"
)

func main() {
	path := flag.String("path", "records.db", "path to the store file")
	initialCapacity := flag.Int("initial-capacity", 256, "index slots to reserve when creating a new store")
	flag.Parse()

	var s *store.RecordsStore
	var err error

	if _, statErr := os.Stat(*path); statErr == nil {
		fmt.Println("Using existing store:", *path)
		s, err = store.Open(*path, store.ModeReadWrite)
	} else {
		fmt.Println("Creating new store:", *path)
		s, err = store.Create(*path, *initialCapacity)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("input error:", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}
		if line == "help" {
			printHelp()
			continue
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}

		if err := dispatch(s, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func dispatch(s *store.RecordsStore, args []string) error {
	if len(args) == 0 {
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "insert":
		if len(args) != 3 {
			return fmt.Errorf("usage: insert <key> <value>")
		}
		return s.Insert(args[1], []byte(args[2]))

	case "read":
		if len(args) != 2 {
			return fmt.Errorf("usage: read <key>")
		}
		rec, err := s.Read(args[1])
		if err != nil {
			return err
		}
		fmt.Println(string(rec.Bytes))
		return nil

	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: update <key> <value>")
		}
		return s.Update(args[1], []byte(args[2]))

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete <key>")
		}
		return s.Delete(args[1])

	case "exists":
		if len(args) != 2 {
			return fmt.Errorf("usage: exists <key>")
		}
		fmt.Println(s.Exists(args[1]))
		return nil

	case "keys":
		for _, k := range s.Keys() {
			fmt.Println(k)
		}
		return nil

	case "size":
		fmt.Println(strconv.Itoa(s.Size()))
		return nil

	default:
		return fmt.Errorf("unknown command %q, try 'help'", args[0])
	}
}

func printHelp() {
	fmt.Println(`commands:
  insert <key> <value>
  read <key>
  update <key> <value>
  delete <key>
  exists <key>
  keys
  size
  exit`)
}
