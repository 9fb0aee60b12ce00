/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package main

import "github.com/megjohnson1999/assembly-clustering-validation/cmd"

func main() {
	cmd.Execute()
}
