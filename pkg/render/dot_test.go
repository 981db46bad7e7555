package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/cookgraph/pkg/network"
)

func sample(t *testing.T) *network.Network {
	t.Helper()
	net := network.New()
	for _, spec := range []network.NodeSpec{
		{ID: "a", Kind: "constant", Outputs: []network.PortSpec{{Name: "out"}}, Settings: network.Settings{"value": 2}},
		{ID: "b", Kind: "constant", Outputs: []network.PortSpec{{Name: "out"}}},
		{ID: "sum", Kind: "add", Inputs: []network.PortSpec{{Name: "terms", Multi: true}}, Outputs: []network.PortSpec{{Name: "out"}}},
	} {
		if _, err := net.AddNode(spec); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"a", "b"} {
		if _, err := net.Connect(net.Node(id).Output("out"), net.Node("sum").Input("terms")); err != nil {
			t.Fatal(err)
		}
	}
	return net
}

func TestToDOT(t *testing.T) {
	net := sample(t)
	_ = net.SetLocked("b", true)
	_ = net.SetVisible("sum")

	dot := ToDOT(net, Options{})
	for _, want := range []string{
		"digraph G {",
		`"a" [label="a\n(constant)", fillcolor=lightyellow];`,
		`style="rounded,filled,dashed"`,
		`color=royalblue, penwidth=3`,
		`"a" -> "sum" [headlabel="terms[0]"];`,
		`"b" -> "sum" [headlabel="terms[1]"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	net := sample(t)
	net.Node("b").Output("out").SetValue(7)

	dot := ToDOT(net, Options{Detailed: true})
	if !strings.Contains(dot, `value: 2`) {
		t.Errorf("detailed label missing setting:\n%s", dot)
	}
	if !strings.Contains(dot, `out = 7`) {
		t.Errorf("detailed label missing output value:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !bytes.HasPrefix(got, []byte(want)) {
		t.Errorf("normalizeViewBox() = %s, want prefix %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(ToDOT(sample(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output has no svg element")
	}
}
