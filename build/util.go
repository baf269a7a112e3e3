package build

import "fmt"

// parseVec3 parses a "x y z" space-separated triple, the conventional
// Quake-style entity value format for origin/angles keys.
func parseVec3(s string, x, y, z *float64) (int, error) {
	return fmt.Sscanf(s, "%g %g %g", x, y, z)
}
