package blocks

import (
	"strconv"
	"strings"
)

// Mode selects the consumer of serialized output
type Mode string

const (
	// ModePreview mirrors the editing canvas and filters blocks by device
	ModePreview Mode = "preview"
	// ModeSource is the raw source view: every block, one render unit per line
	ModeSource Mode = "source"
	// ModeExport is the downloadable document: every block inside the document shell
	ModeExport Mode = "export"
)

// IsValid reports whether m is a known mode
func (m Mode) IsValid() bool {
	return m == ModePreview || m == ModeSource || m == ModeExport
}

// Device is the preview device
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// IsValid reports whether d is a known device
func (d Device) IsValid() bool {
	return d == DeviceDesktop || d == DeviceTablet || d == DeviceMobile
}

const (
	DefaultGroupGap     = 10
	DefaultContentWidth = 600
	DefaultIconBaseURL  = "/icons"
)

// SerializeOptions tunes serialization. Zero values pick the defaults.
type SerializeOptions struct {
	Mode         Mode
	Device       Device
	RichText     RichText
	GroupGap     int
	ContentWidth int
	IconBaseURL  string
}

func (o SerializeOptions) withDefaults() SerializeOptions {
	if o.Mode == "" {
		o.Mode = ModePreview
	}
	if o.Device == "" {
		o.Device = DeviceDesktop
	}
	if o.RichText == nil {
		o.RichText = EscapedRichText{}
	}
	if o.GroupGap <= 0 {
		o.GroupGap = DefaultGroupGap
	}
	if o.ContentWidth <= 0 {
		o.ContentWidth = DefaultContentWidth
	}
	if o.IconBaseURL == "" {
		o.IconBaseURL = DefaultIconBaseURL
	}
	return o
}

func (o SerializeOptions) separator() string {
	if o.Mode == ModeSource {
		return "\n"
	}
	return ""
}

// VisibleOn reports whether a block is shown on the device. Tablet shares the desktop rule.
func VisibleOn(b Block, device Device) bool {
	switch b.GetBase().Visibility {
	case VisibilityDesktop:
		return device == DeviceDesktop || device == DeviceTablet
	case VisibilityMobile:
		return device == DeviceMobile
	default:
		return true
	}
}

// FilterForDevice keeps the blocks visible on the device, in their original order
func FilterForDevice(blocks []Block, device Device) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if VisibleOn(b, device) {
			out = append(out, b)
		}
	}
	return out
}

// RenderBlock serializes one block with its resolved style
func RenderBlock(b Block, opts SerializeOptions) string {
	if b == nil {
		return ""
	}
	opts = opts.withDefaults()
	r := &renderer{richText: opts.RichText, iconBaseURL: opts.IconBaseURL}
	return b.render(r, ResolveStyle(b))
}

// RenderUnits groups a block list and serializes each render unit. In preview mode the
// device filter runs before grouping, so hidden blocks never split or join a group.
func RenderUnits(blocks []Block, opts SerializeOptions) []string {
	opts = opts.withDefaults()
	if opts.Mode == ModePreview {
		blocks = FilterForDevice(blocks, opts.Device)
	}
	r := &renderer{richText: opts.RichText, iconBaseURL: opts.IconBaseURL}

	units := GroupBlocks(blocks)
	out := make([]string, 0, len(units))
	for _, u := range units {
		if !u.IsGroup() {
			out = append(out, u.Blocks[0].render(r, ResolveStyle(u.Blocks[0])))
			continue
		}
		var sb strings.Builder
		for _, b := range u.Blocks {
			sb.WriteString(b.render(r, ResolveStyle(b)))
		}
		out = append(out, groupOpen(u, opts.GroupGap)+sb.String()+"</div>")
	}
	return out
}

func groupOpen(u RenderUnit, gap int) string {
	style := Declarations{
		decl(PropDisplay, "flex"),
		decl("flex-direction", string(u.Direction())),
		decl("gap", px(gap)),
	}
	return "<div" + attr("data-inline-group", strconv.Itoa(len(u.Blocks))) + styleAttr(style) + ">"
}

// SerializeBlocks serializes a bare block list
func SerializeBlocks(blocks []Block, opts SerializeOptions) string {
	opts = opts.withDefaults()
	return strings.Join(RenderUnits(blocks, opts), opts.separator())
}

// Serialize turns a document into markup for the selected mode. Export output is a
// fragment ready to be dropped into any HTML document shell.
func Serialize(doc *Document, opts SerializeOptions) string {
	if doc == nil {
		return ""
	}
	opts = opts.withDefaults()

	var body string
	if doc.UseSections {
		parts := make([]string, 0, len(doc.Sections))
		for _, s := range doc.Sections {
			parts = append(parts, SerializeSection(s, opts))
		}
		body = strings.Join(parts, opts.separator())
	} else {
		body = SerializeBlocks(doc.Blocks, opts)
	}

	if opts.Mode != ModeExport {
		return body
	}
	return ExportContainer(doc, opts.ContentWidth, body)
}

// SerializeSection wraps a section's render units in the section container
func SerializeSection(s Section, opts SerializeOptions) string {
	opts = opts.withDefaults()
	return SectionOpen(s) + SerializeBlocks(s.Blocks, opts) + "</div>"
}

// SectionOpen is the opening tag of a section container
func SectionOpen(s Section) string {
	var style Declarations
	if s.BackgroundColor != "" {
		style = append(style, decl(PropBackgroundColor, s.BackgroundColor))
	}
	if s.Padding > 0 {
		style = append(style, decl(PropPadding, px(s.Padding)))
	}
	return "<div" + attr("data-section-id", s.ID) + styleAttr(style) + ">"
}

// ExportContainer wraps body in the document background and the centred content column
func ExportContainer(doc *Document, contentWidth int, body string) string {
	if contentWidth <= 0 {
		contentWidth = DefaultContentWidth
	}
	outer := Declarations{}
	if doc.DocumentBackgroundColor != "" {
		outer = append(outer, decl(PropBackgroundColor, doc.DocumentBackgroundColor))
	}
	if doc.Padding > 0 {
		outer = append(outer, decl(PropPadding, px(doc.Padding)))
	}
	inner := Declarations{
		decl("max-width", px(contentWidth)),
		decl(PropMargin, "0 auto"),
	}
	if doc.BackgroundColor != "" {
		inner = append(inner, decl(PropBackgroundColor, doc.BackgroundColor))
	}
	return element("div", outer, element("div", inner, body))
}
