package assets

import (
	"strings"
	"testing"
)

func TestDefault_VariantCounts(t *testing.T) {
	tests := []struct {
		op       string
		variants int
		aspect   string
	}{
		{OpPortrait, 3, "3:4"},
		{OpCelebration, 4, "16:9"},
		{OpOutfit, 1, "9:16"},
		{OpFood, 1, ""},
		{OpCharacter, 1, ""},
		{OpPhotoshoot, 6, "9:16"},
	}

	d := Default()
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			if got := d.Variants(tt.op); got != tt.variants {
				t.Errorf("expected %d variants, got %d", tt.variants, got)
			}
			if got := d.Aspect(tt.op); got != tt.aspect {
				t.Errorf("expected aspect %q, got %q", tt.aspect, got)
			}
			out, err := d.Render(tt.op, Data{Subject: "pizza"})
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if len(out) != tt.variants {
				t.Errorf("expected %d directives, got %d", tt.variants, len(out))
			}
			for i, s := range out {
				if strings.Contains(s, "{{") || strings.Contains(s, "<no value>") {
					t.Errorf("directive %d has unrendered fields", i)
				}
			}
		})
	}
}

func TestRender_SubstitutesCastAndVariants(t *testing.T) {
	d := Default()

	group, err := d.Render(OpCelebration, Data{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(group[0], "Position Pratiksha in the center") {
		t.Error("expected default cast in celebration directive")
	}
	if !strings.Contains(group[1], "Pose 2: A candid moment of laughter. Girish and Vaishnavi") {
		t.Error("expected cast names inside the pose text")
	}

	shoot, err := d.Render(OpPhotoshoot, Data{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(shoot[2], "Eiffel Tower") || strings.Contains(shoot[0], "Eiffel Tower") {
		t.Error("expected each photoshoot variant to carry its own background")
	}

	food, err := d.Render(OpFood, Data{Subject: "masala dosa"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(food[0], "photograph of masala dosa") {
		t.Error("expected food subject in directive")
	}

	custom, err := d.Render(OpCelebration, Data{Cast: Cast{Honoree: "Asha", Partner: "Ravi", Friend: "Meera"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(custom[0], "Position Asha in the center, between Ravi and Meera") {
		t.Error("expected custom cast to override defaults")
	}
}

func TestRender_UnknownOperation(t *testing.T) {
	if _, err := Default().Render("nope", Data{}); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":      "operations: [",
		"no operations": "cast:\n  honoree: x\n",
		"bad template":  "operations:\n  x:\n    template: \"{{.Nope\"\n",
		"no template":   "operations:\n  x:\n    aspect: \"1:1\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
