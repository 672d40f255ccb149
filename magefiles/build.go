//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the viewer and the headless dump tool into bin/.
func (Build) All() error {
	mg.Deps(Build.Viewer, Build.Dump)
	return nil
}

func (Build) Viewer() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/armsim", "."), withStream())
	return err
}

func (Build) Dump() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/armdump", "./cmd/armdump"), withStream())
	return err
}

// Runs vet and the test suite.
func Test() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
