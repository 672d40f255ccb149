//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the viewer with the embedded arm.
func (Run) Viewer() error {
	fmt.Println("Run viewer...")
	_, err := executeCmd("go", withArgs("run", ".", "-watch"), withStream())
	return err
}

// Steps the arm headlessly for one simulated second and prints the poses.
func (Run) Dump() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/armdump", "-steps", "1000"), withStream())
	return err
}
