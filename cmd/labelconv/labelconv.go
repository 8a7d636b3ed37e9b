// labelconv converts a file of flat annotation records into the nested label
// response, without needing a running server.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/akamensky/argparse"

	"github.com/labelforge/labelforge/pkg/anno"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("labelconv", "Convert annotation records to a label response")
	input := parser.String("i", "input", &argparse.Options{Help: "Input annotations file (json array)", Required: true})
	output := parser.File("o", "output", os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0664, &argparse.Options{Help: "Output response file", Required: true})
	ifaceFile := parser.String("", "interface", &argparse.Options{Help: "Project interface file (required for video projects)", Required: false, Default: ""})
	inputType := parser.String("t", "input-type", &argparse.Options{Help: "Project input type (VIDEO for video projects)", Required: false, Default: ""})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	raw, err := os.ReadFile(*input)
	check(err)
	annotations := []anno.Annotation{}
	check(json.Unmarshal(raw, &annotations))

	var iface *anno.Interface
	if *ifaceFile != "" {
		raw, err := os.ReadFile(*ifaceFile)
		check(err)
		iface = &anno.Interface{}
		check(json.Unmarshal(raw, iface))
	}

	response, err := anno.Convert(*inputType, annotations, iface, nil)
	check(err)

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	check(encoder.Encode(response))
}
