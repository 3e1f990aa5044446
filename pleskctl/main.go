/*
	Run a single catalogued panel operation from the command line and print the result as YAML.

	pleskctl -config /etc/webhosting/plesk.json create_client name=Acme username=acme1 password='Xx#12345'
	pleskctl -list
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

var (
	PanelConfig = flag.String("config", "/etc/webhosting/plesk.json", "Plesk panel connection settings")
	List        = flag.Bool("list", false, "List the operations that can be run")
	Debug       = flag.Bool("debug", false, "Log the documents sent to the panel")
)

func main() {
	flag.Parse()
	if *Debug {
		log.SetLevel(log.DebugLevel)
	}
	if *List {
		for _, name := range plesk.OperationNames() {
			op, _ := plesk.Lookup(name)
			fmt.Println(op)
		}
		return
	}
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: pleskctl [flags] <operation> [key=value ...]")
		os.Exit(2)
	}
	op, ok := plesk.Lookup(flag.Arg(0))
	if !ok {
		log.Fatalf("Unknown operation %q, try -list", flag.Arg(0))
	}
	params, err := parseParams(flag.Args()[1:])
	if err != nil {
		log.Fatal(err)
	}

	config, err := plesk.LoadConfig(*PanelConfig)
	if err != nil {
		log.Fatalf("Problem loading panel config: %v", err)
	}
	config.Debug = config.Debug || *Debug
	client := plesk.NewClient(config)

	outcome, err := client.Call(context.Background(), op, params)
	if err != nil {
		log.Fatalf("%v failed: %v", op, err)
	}
	if err := render(os.Stdout, outcome); err != nil {
		log.Fatal(err)
	}
}

// parseParams turns key=value arguments into call parameters.  A repeated key keeps the last value.
func parseParams(args []string) (plesk.Params, error) {
	params := plesk.Params{}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}

func render(w io.Writer, outcome plesk.Outcome) error {
	var doc interface{} = outcome.Result()
	if outcome.IsMany() {
		doc = outcome.Results()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
