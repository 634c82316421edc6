package theme

import (
	"fmt"
)

// Banner returns the violet tower banner shown by help and init.
func Banner() string {
	const violet = "\033[35m"
	const gold = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		"   ◇  " + gold + "WHERE IS XÛR" + reset + "  ◇\n" +
		violet + "      ▄▀▀▀▀▀▀▀▀▄\n" + reset +
		violet + "     █  ◉    ◉  █\n" + reset +
		violet + "      ▀▄▄▄▄▄▄▄▄▀\n" + reset +
		gold + "   ──────────────────\n" + reset +
		"   weekly arrival countdown\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
