//go:build vips

package main

import (
	_ "github.com/cytomine/pims/format/vips"
)
