package eta_rest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	ETA_NAMESPACE = "http://www.eta.co.at/rest/v1"
)

var (
	ErrNoValue         = errors.New("eta: response has no value element")
	ErrControllerError = errors.New("eta: controller returned an error")
)

type ControllerInfo struct {
	Serial1 string
	Serial2 string
}

type Value struct {
	URI         string
	StrValue    string
	Unit        string
	DecPlaces   int
	ScaleFactor int
	Raw         string
}

// Float converts the display string of the value. The controller renders
// decimals with a comma and may group thousands with a dot.
func (v Value) Float() (float64, error) {
	return ParseDecimalComma(v.StrValue)
}

// Precision is the larger of the decPlaces hint and the digits rendered after
// the decimal comma. decPlaces is not sent by every controller firmware.
func (v Value) Precision() int {
	digits := 0
	if i := strings.LastIndex(strings.TrimSpace(v.StrValue), ","); i >= 0 {
		for _, r := range strings.TrimSpace(v.StrValue)[i+1:] {
			if r < '0' || r > '9' {
				break
			}
			digits++
		}
	}
	return max(digits, v.DecPlaces)
}

func ParseDecimalComma(str string) (float64, error) {
	s := strings.TrimSpace(str)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("eta: invalid decimal %q: %w", str, err)
	}
	return f, nil
}

type MenuNode struct {
	URI      string
	Name     string
	Children []MenuNode
}

type Menu struct {
	Groups []MenuNode
}

// Walk visits every object below the top level groups depth first. Groups
// are passed as parent but are not visited themselves. Returning false stops
// the walk.
func (m *Menu) Walk(fn func(node *MenuNode, parent *MenuNode) bool) {
	for i := range m.Groups {
		if !walkChildren(&m.Groups[i], fn) {
			return
		}
	}
}

func walkChildren(parent *MenuNode, fn func(node *MenuNode, parent *MenuNode) bool) bool {
	for i := range parent.Children {
		node := &parent.Children[i]
		if !fn(node, parent) {
			return false
		}
		if !walkChildren(node, fn) {
			return false
		}
	}
	return true
}

// XML envelopes

type varEnvelope struct {
	XMLName xml.Name  `xml:"eta"`
	Value   *xmlValue `xml:"value"`
	Error   *string   `xml:"error"`
}

type xmlValue struct {
	URI         string  `xml:"uri,attr"`
	StrValue    *string `xml:"strValue,attr"`
	Unit        string  `xml:"unit,attr"`
	DecPlaces   string  `xml:"decPlaces,attr"`
	ScaleFactor string  `xml:"scaleFactor,attr"`
	Raw         string  `xml:",chardata"`
}

type menuEnvelope struct {
	XMLName xml.Name `xml:"eta"`
	Menu    *struct {
		Groups []xmlObject `xml:"fub"`
	} `xml:"menu"`
	Error *string `xml:"error"`
}

type xmlObject struct {
	URI      string      `xml:"uri,attr"`
	Name     string      `xml:"name,attr"`
	Children []xmlObject `xml:"object"`
}

func ParseValue(body []byte) (*Value, error) {
	var env varEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("eta: decode value: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrControllerError, strings.TrimSpace(*env.Error))
	}
	if env.Value == nil || env.Value.StrValue == nil {
		return nil, ErrNoValue
	}
	return &Value{
		URI:         env.Value.URI,
		StrValue:    *env.Value.StrValue,
		Unit:        env.Value.Unit,
		DecPlaces:   atoiOrZero(env.Value.DecPlaces),
		ScaleFactor: atoiOrZero(env.Value.ScaleFactor),
		Raw:         strings.TrimSpace(env.Value.Raw),
	}, nil
}

func ParseMenu(body []byte) (*Menu, error) {
	var env menuEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("eta: decode menu: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrControllerError, strings.TrimSpace(*env.Error))
	}
	menu := &Menu{}
	if env.Menu == nil {
		return menu, nil
	}
	for _, g := range env.Menu.Groups {
		menu.Groups = append(menu.Groups, toMenuNode(g))
	}
	return menu, nil
}

func toMenuNode(o xmlObject) MenuNode {
	node := MenuNode{
		URI:  o.URI,
		Name: o.Name,
	}
	for _, c := range o.Children {
		node.Children = append(node.Children, toMenuNode(c))
	}
	return node
}

func atoiOrZero(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}
