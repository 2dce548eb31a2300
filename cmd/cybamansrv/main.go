package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "cybamansrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr: ":8000",
		Nodes: []ObjSetup{
			{Endpoint: "/cybaman"}}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `cybamansrv simulates Cybaman Reviver motion control devices and exposes
an HTTP interface to them.  This enables a server-client architecture,
and the clients can leverage the excellent HTTP libraries for any
programming language.

Usage:
	cybamansrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `cybamansrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

Each node in the config stands up one independent simulated device.  No two
nodes can have the same Endpoint.

Per-axis software limits may be imposed with the Limits field:
	Limits:
		A:
			Min: -200
			Max: 200

Setting BackdoorAddr on a node opens the simulator's out-of-band command
channel on that TCP address; test harnesses use it to force device-internal
state.  Leave it empty in anything resembling production.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

// printconf prints the live config, or the config parsed from path when one
// is given
func printconf(path string) {
	c := Config{}
	if path != "" {
		var err error
		c, err = LoadYaml(path)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		k.Unmarshal("", &c)
	}
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("cybamansrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux := BuildMux(context.Background(), c)
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		path := ""
		if len(args) > 2 {
			path = args[2]
		}
		printconf(path)
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
