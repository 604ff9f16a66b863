package web

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/KaramelBytes/tidyloom/internal/analysis"
	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/cleaning"
	"github.com/KaramelBytes/tidyloom/internal/export"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/session"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Clean", Href: "/clean", Key: "clean"},
	{Label: "Analyze", Href: "/analyze", Key: "analyze"},
}

const pageCSS = `<style>
body{font-family:system-ui,sans-serif;margin:0;color:#1f2328;background:#f6f8fa}
.app-nav{display:flex;gap:16px;padding:12px 24px;background:#24292f}
.app-nav a{color:#d0d7de;text-decoration:none}.app-nav a.active{color:#fff;font-weight:600}
.content{max-width:1100px;margin:0 auto;padding:24px}
.flash{padding:10px 14px;border-radius:6px;margin:8px 0}
.flash-success{background:#dafbe1}.flash-error{background:#ffebe9}.flash-warning{background:#fff8c5}.flash-info{background:#ddf4ff}
table{border-collapse:collapse;margin:8px 0;background:#fff}th,td{border:1px solid #d0d7de;padding:4px 8px;text-align:left}
.metrics{display:flex;gap:16px}.metric{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:12px 16px}
.metric strong{display:block;font-size:1.5em}
.buttons{display:flex;gap:8px;flex-wrap:wrap}.buttons form{margin:0}
pre{background:#fff;border:1px solid #d0d7de;padding:12px;overflow:auto}
img.chart{max-width:100%;border:1px solid #d0d7de;background:#fff}
</style>`

func appPage(title, active string, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := "app-nav-link"
		if item.Key == active {
			className += " active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | tidyloom")),
			Link(Rel("icon"), Href("data:,")),
			Raw(pageCSS),
		),
		Body(
			Nav(Class("app-nav"), Group(nav)),
			Main(Class("content"),
				H1(Text(title)),
				Group(body),
			),
		),
	)
}

type flash struct {
	Level   string // success|error|warning|info
	Message string
	Detail  string
}

func flashNodes(flashes []flash) Node {
	nodes := make([]Node, 0, len(flashes))
	for _, f := range flashes {
		children := []Node{Class("flash flash-" + f.Level), Text(f.Message)}
		if f.Detail != "" {
			children = append(children, Br(), Small(Text(f.Detail)))
		}
		nodes = append(nodes, Div(children...))
	}
	return Group(nodes)
}

// acceptList is the file input filter, e.g. ".csv,.xls,.xlsx".
func acceptList() string {
	exts := make([]string, 0, len(loader.Formats()))
	for _, f := range loader.Formats() {
		exts = append(exts, "."+string(f))
	}
	return strings.Join(exts, ",")
}

func uploadForm(action, prompt string) Node {
	return Form(
		Method("post"),
		Action(action),
		Attr("enctype", "multipart/form-data"),
		P(Text(prompt)),
		Label(Text("Upload A CSV Or An Excel File "),
			Input(Type("file"), Name("file"), Attr("accept", acceptList()), Required()),
		),
		Button(Type("submit"), Text("Upload")),
	)
}

// dataTable renders the rows of t with a leading index column.
func dataTable(t *table.Table) Node {
	head := []Node{Th(Text(""))}
	for _, name := range t.Names() {
		head = append(head, Th(Text(name)))
	}
	rows := make([]Node, 0, t.NumRows())
	for i, rec := range t.Records() {
		cells := []Node{Th(Text(strconv.Itoa(i)))}
		for _, v := range rec {
			if v == "" {
				v = "None"
			}
			cells = append(cells, Td(Text(v)))
		}
		rows = append(rows, Tr(cells...))
	}
	return Table(THead(Tr(head...)), TBody(rows...))
}

func overview(p *analysis.Profile) Node {
	return Group{
		H3(Text("Data Overview")),
		P(Textf("Number Of Rows: %d", p.Rows)),
		P(Textf("Number Of Columns: %d", p.Cols)),
		P(Textf("Number Of Missing Values: %d", p.NullCells)),
		P(Textf("Number Of Duplicate Records: %d", p.DuplicateRows)),
	}
}

func infoBlock(p *analysis.Profile) Node {
	return Group{
		H3(Text("Complete Summary Of Dataset")),
		Pre(Text(p.Info())),
	}
}

func metric(label string, value int) Node {
	return Div(Class("metric"), Span(Text(label)), Strong(Text(strconv.Itoa(value))))
}

func summaryRecord(p *analysis.Profile) Node {
	return Group{
		H3(Text("Summary Record")),
		Div(Class("metrics"),
			metric("Number Of Rows", p.Rows),
			metric("Number Of Columns", p.Cols),
			metric("Missing Value", p.NullCells),
			metric("Duplicate Records", p.DuplicateRows),
		),
	}
}

func stat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// numericDescribe lays the statistics out as rows and columns as columns.
func numericDescribe(p *analysis.Profile) Node {
	if len(p.Numeric) == 0 {
		return P(Class("flash flash-info"), Text("No numerical features found in this dataset."))
	}
	head := []Node{Th(Text(""))}
	for _, n := range p.Numeric {
		head = append(head, Th(Text(n.Name)))
	}
	type row struct {
		label string
		get   func(analysis.NumericSummary) string
	}
	statRows := []row{
		{"count", func(n analysis.NumericSummary) string { return strconv.Itoa(n.Count) }},
		{"mean", func(n analysis.NumericSummary) string { return stat(n.Mean) }},
		{"std", func(n analysis.NumericSummary) string { return stat(n.Std) }},
		{"min", func(n analysis.NumericSummary) string { return stat(n.Min) }},
		{"25%", func(n analysis.NumericSummary) string { return stat(n.Q25) }},
		{"50%", func(n analysis.NumericSummary) string { return stat(n.Q50) }},
		{"75%", func(n analysis.NumericSummary) string { return stat(n.Q75) }},
		{"max", func(n analysis.NumericSummary) string { return stat(n.Max) }},
	}
	body := make([]Node, 0, len(statRows))
	for _, sr := range statRows {
		cells := []Node{Th(Text(sr.label))}
		for _, n := range p.Numeric {
			cells = append(cells, Td(Text(sr.get(n))))
		}
		body = append(body, Tr(cells...))
	}
	return Table(THead(Tr(head...)), TBody(body...))
}

func categoricalDescribe(p *analysis.Profile) Node {
	if !p.HasCategorical() {
		return P(Class("flash flash-info"), Text("No non-numerical features found in this dataset."))
	}
	head := []Node{Th(Text(""))}
	count := []Node{Th(Text("count"))}
	unique := []Node{Th(Text("unique"))}
	top := []Node{Th(Text("top"))}
	freq := []Node{Th(Text("freq"))}
	for _, c := range p.Categorical {
		head = append(head, Th(Text(c.Name)))
		count = append(count, Td(Text(strconv.Itoa(c.Count))))
		unique = append(unique, Td(Text(strconv.Itoa(c.Unique))))
		top = append(top, Td(Text(c.Top)))
		freq = append(freq, Td(Text(strconv.Itoa(c.Freq))))
	}
	return Table(THead(Tr(head...)), TBody(Tr(count...), Tr(unique...), Tr(top...), Tr(freq...)))
}

type cleanView struct {
	Snap        session.Snapshot
	Flashes     []flash
	PreviewRows int
}

func cleanPage(v cleanView) Node {
	body := []Node{
		uploadForm("/clean/upload", "Upload A CSV Or An Excel File To Perform Data Cleaning"),
		flashNodes(v.Flashes),
	}
	if !v.Snap.HasTable() {
		body = append(body, P(Class("flash flash-warning"), Text("No data available to download. Please upload and clean data first.")))
		return appPage("Data Cleaning Application", "clean", body...)
	}

	loaded := analysis.Describe(v.Snap.Loaded)
	working := analysis.Describe(v.Snap.Working)

	ops := make([]Node, 0, len(cleaning.Ops())+1)
	for _, op := range cleaning.Ops() {
		ops = append(ops, Form(Method("post"), Action("/clean/apply"),
			Input(Type("hidden"), Name("op"), Value(op.String())),
			Button(Type("submit"), Text(op.Label())),
		))
	}
	ops = append(ops, Form(Method("post"), Action("/clean/reset"),
		Button(Type("submit"), Text("Reset To Uploaded Data")),
	))

	body = append(body,
		P(Textf("File: %s", v.Snap.Filename)),
		H3(Text("Preview Of Data")),
		dataTable(v.Snap.Loaded.Head(v.PreviewRows)),
		overview(loaded),
		infoBlock(loaded),
		H3(Text("Data Cleaning Options")),
		Div(Class("buttons"), Group(ops)),
		summaryRecord(working),
		H3(Text("Download Cleaned File")),
		Div(Class("buttons"),
			A(Href("/download/csv"), Attr("download", export.CSVFilename), Text("Download Cleaned CSV")),
			A(Href("/download/xlsx"), Attr("download", export.XLSXFilename), Text("Download Cleaned Excel")),
		),
	)
	return appPage("Data Cleaning Application", "clean", body...)
}

type analyzeView struct {
	Snap        session.Snapshot
	Flashes     []flash
	PreviewRows int
	Selected    *table.Table
	X, Y        string
	Chart       *chart.Output
	ChartErr    string
	Kind        chart.Kind
}

func selectOptions(names []string, selected func(string) bool) []Node {
	opts := make([]Node, 0, len(names))
	for _, name := range names {
		if selected(name) {
			opts = append(opts, Option(Value(name), Selected(), Text(name)))
		} else {
			opts = append(opts, Option(Value(name), Text(name)))
		}
	}
	return opts
}

func chartSection(v analyzeView) Node {
	if v.Kind == "" {
		return Group{}
	}
	nodes := []Node{H3(Textf("Showing A %s", v.Kind.Label()))}
	if v.ChartErr != "" {
		return Group(append(nodes, P(Class("flash flash-error"), Text(v.ChartErr))))
	}
	if v.Chart == nil {
		return Group(nodes)
	}
	for _, w := range v.Chart.Warnings {
		nodes = append(nodes, P(Class("flash flash-warning"), Text(w)))
	}
	if v.Chart.Notice != "" {
		nodes = append(nodes, P(Class("flash flash-info"), Text(v.Chart.Notice)))
	}
	if v.Chart.Rendered() {
		src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(v.Chart.PNG)
		nodes = append(nodes, Img(Class("chart"), Src(src), Alt(v.Chart.Title)))
	}
	return Group(nodes)
}

func analyzePage(v analyzeView) Node {
	body := []Node{
		uploadForm("/analyze/upload", "Upload A CSV Or An Excel File To Explore Your Data Interactively"),
		flashNodes(v.Flashes),
	}
	if !v.Snap.HasTable() {
		return appPage("Analyze Your Data", "analyze", body...)
	}

	t := v.Snap.Loaded
	p := analysis.Describe(t)
	names := t.Names()

	selected := map[string]bool{}
	if v.Selected != nil {
		for _, n := range v.Selected.Names() {
			selected[n] = true
		}
	}
	x, y := v.X, v.Y
	if x == "" && len(names) > 0 {
		x = names[0]
	}
	if y == "" && len(names) > 0 {
		y = names[0]
	}

	var selection Node
	if v.Selected != nil && v.Selected.NumCols() > 0 {
		selection = dataTable(v.Selected.Head(v.PreviewRows))
	} else {
		selection = Group{
			P(Class("flash flash-info"), Text("No Columns Selected. Showing Full Dataset")),
			dataTable(t.Head(v.PreviewRows)),
		}
	}

	buttons := make([]Node, 0, len(chart.Kinds()))
	for _, k := range chart.Kinds() {
		buttons = append(buttons, Button(Type("submit"), Name("kind"), Value(string(k)),
			Text(fmt.Sprintf("Click Here To Generate The %s", k.Label()))))
	}

	body = append(body,
		P(Textf("File: %s", v.Snap.Filename)),
		H3(Text("Preview Of Data")),
		dataTable(t.Head(v.PreviewRows)),
		overview(p),
		infoBlock(p),
		H3(Text("Statistical Summary Of Dataset")),
		numericDescribe(p),
		H3(Text("Statistical Summary For Non-Numerical Of Dataset")),
		categoricalDescribe(p),
		Form(Method("get"), Action("/analyze"),
			H3(Text("Select The Desired Columns For Analysis")),
			Label(Text("Choose Columns "),
				Select(Name("cols"), Attr("multiple"), Group(selectOptions(names, func(n string) bool { return selected[n] }))),
			),
			Button(Type("submit"), Text("Apply Selection")),
			selection,
			H3(Text("Data Visualization")),
			Label(Text("Select Column For X-Axis "),
				Select(Name("x"), Group(selectOptions(names, func(n string) bool { return n == x }))),
			),
			Label(Text(" Select Column For Y-Axis "),
				Select(Name("y"), Group(selectOptions(names, func(n string) bool { return n == y }))),
			),
			Div(Class("buttons"), Group(buttons)),
		),
		chartSection(v),
	)
	return appPage("Analyze Your Data", "analyze", body...)
}
