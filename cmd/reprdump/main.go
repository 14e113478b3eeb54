// Command reprdump is a diagnostic tool for engine developers, not part of
// the library's public API: it dumps compilation units, named type DIEs,
// and a rendered value from an ELF file's own DWARF debug information, the
// spiritual descendant of the teacher's viewcore tool.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/golang-repr/gorepr/dwarf"
	"github.com/golang-repr/gorepr/elf"
	"github.com/golang-repr/gorepr/internal/typeplan"
)

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func openFile(cmd *cobra.Command) *elf.File {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		exitf("%v\n", err)
	}
	f, err := elf.Open(path)
	if err != nil {
		exitf("opening %s: %v\n", path, err)
	}
	return f
}

func main() {
	root := &cobra.Command{
		Use:   "reprdump",
		Short: "Inspect the DWARF debug information gorepr reads at runtime",
	}
	root.PersistentFlags().String("file", "/proc/self/exe", "ELF file to read")

	root.AddCommand(cusCmd())
	root.AddCommand(typesCmd())
	root.AddCommand(renderCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func cusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cus",
		Short: "List compilation units",
		Run: func(cmd *cobra.Command, args []string) {
			f := openFile(cmd)
			defer f.Close()
			for i := 0; i < f.DWARF.NumUnits(); i++ {
				root, err := f.DWARF.Root(i)
				if err != nil {
					exitf("unit %d: %v\n", i, err)
				}
				name, _ := root.GetCString(dwarf.AttrName)
				fmt.Printf("%d\ttag=%s\tname=%s\n", i, root.Tag(), name)
			}
		},
	}
}

var namedTypeTags = map[dwarf.Tag]bool{
	dwarf.TagEnumerationType: true,
	dwarf.TagStructureType:   true,
	dwarf.TagClassType:       true,
	dwarf.TagBaseType:        true,
	dwarf.TagTypedef:         true,
	dwarf.TagPointerType:     true,
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List named type DIEs across every compilation unit",
		Run: func(cmd *cobra.Command, args []string) {
			f := openFile(cmd)
			defer f.Close()
			for i := 0; i < f.DWARF.NumUnits(); i++ {
				e, err := f.DWARF.Root(i)
				if err != nil {
					exitf("unit %d: %v\n", i, err)
				}
				if !e.HasChildren() {
					continue
				}
				depth := 0
				cur := e
				for {
					if namedTypeTags[cur.Tag()] {
						if n, ok := cur.GetCString(dwarf.AttrName); ok {
							fmt.Printf("cu=%d\toffset=%d\ttag=%s\tname=%s\n", i, cur.Offset(), cur.Tag(), n)
						}
					}
					if cur.HasChildren() {
						depth++
					}
					next, err := cur.Next()
					if err != nil {
						exitf("unit %d: %v\n", i, err)
					}
					if next.IsEnd() {
						depth--
						if depth == 0 {
							break
						}
					}
					cur = next
				}
			}
		},
	}
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the printer for a type DIE and render hex-encoded raw bytes through it",
		Run: func(cmd *cobra.Command, args []string) {
			f := openFile(cmd)
			defer f.Close()

			unitIdx, _ := cmd.Flags().GetInt("cu")
			typeName, _ := cmd.Flags().GetString("type")
			hexBytes, _ := cmd.Flags().GetString("hex")

			if unitIdx < 0 || unitIdx >= f.DWARF.NumUnits() {
				exitf("compilation unit index %d out of range\n", unitIdx)
			}

			entry, found, err := findNamed(f.DWARF, unitIdx, typeName)
			if err != nil {
				exitf("%v\n", err)
			}
			if !found {
				exitf("no type named %q in compilation unit %d\n", typeName, unitIdx)
			}

			raw, err := hex.DecodeString(strings.TrimSpace(hexBytes))
			if err != nil {
				exitf("decoding --hex: %v\n", err)
			}

			builder := typeplan.NewBuilder(f.DWARF, log.New(os.Stderr, "reprdump: ", 0))
			printer := builder.Build(entry)

			var out strings.Builder
			printer.RenderValue(&out, unsafe.Pointer(&raw[0]))
			fmt.Println(out.String())
		},
	}
	cmd.Flags().Int("cu", 0, "compilation unit index to search")
	cmd.Flags().String("type", "", "DW_AT_name of the type to render")
	cmd.Flags().String("hex", "", "hex-encoded raw bytes of the value")
	return cmd
}

func findNamed(d *dwarf.Data, unitIdx int, name string) (*dwarf.Entry, bool, error) {
	e, err := d.Root(unitIdx)
	if err != nil {
		return nil, false, err
	}
	if !e.HasChildren() {
		return nil, false, nil
	}
	depth := 0
	cur := e
	for {
		if namedTypeTags[cur.Tag()] {
			if n, ok := cur.GetCString(dwarf.AttrName); ok && n == name {
				return cur, true, nil
			}
		}
		if cur.HasChildren() {
			depth++
		}
		next, err := cur.Next()
		if err != nil {
			return nil, false, err
		}
		if next.IsEnd() {
			depth--
			if depth == 0 {
				break
			}
		}
		cur = next
	}
	return nil, false, nil
}
