package drawer

import (
	"fmt"
	"io"
	"maps"
	"strconv"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-lazypipe/internal/store"
	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

const maxRGB = 240

// DOTOption configures the generated DOT graph.
type DOTOption func(*description)

// GraphAttribute sets a graph level DOT attribute, such as rankdir.
func GraphAttribute(key, value string) DOTOption {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// DOTDrawer writes the pipeline graph as a DOT file. Stages and links are rendered in
// the order they were added.
type DOTDrawer struct {
	fs       afero.Fs
	graph    graph.Graph[string, string]
	store    *store.MemoryStore[string, string]
	fileName string
	options  []DOTOption
}

// NewDOTDrawer creates a new DOT drawer writing fileName on fs.
func NewDOTDrawer(fs afero.Fs, fileName string, options ...DOTOption) *DOTDrawer {
	memStore := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		fs:       fs,
		fileName: fileName,
		store:    memStore,
		graph:    graph.NewWithStore(graph.StringHash, memStore, graph.Directed()),
		options:  options,
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// Draw writes the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := d.fs.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = d.dot(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}
	err = file.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close dot file %s", d.fileName)
	}

	return nil
}

// SetTotalTime sets the time elapsed since startTime on the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, startTime time.Time) error {
	err := d.store.UpdateVertex(stageName, func(properties *graph.VertexProperties) {
		properties.Attributes["xlabel"] = time.Since(startTime).Round(time.Microsecond).String()
	})
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stageName)
	}

	return nil
}

// AddMeasure labels every stage with its average pull duration and every link with the
// number of elements going through it. Busier links are drawn redder.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()
	edges, err := d.store.ListEdges()
	if err != nil {
		return errors.Wrap(err, "unable to list edges")
	}

	counts := make([]int64, len(edges))
	var maxCount int64
	for idx, edge := range edges {
		counts[idx] = linkCount(metrics, edge)
		maxCount = max(maxCount, counts[idx])
	}

	for idx, edge := range edges {
		colour, err := linkColour(counts[idx], maxCount)
		if err != nil {
			return err
		}
		err = d.graph.UpdateEdge(edge.Source, edge.Target,
			graph.EdgeAttribute("label", strconv.FormatInt(counts[idx], 10)),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", colour),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	for name, mt := range metrics {
		err := d.store.UpdateVertex(name, func(properties *graph.VertexProperties) {
			if avg := mt.AVGDuration(); avg != 0 {
				properties.Attributes["xlabel"] = "avg: " + avg.String()
			}
			if total := mt.GetTotalDuration(); total > 0 && name != model.EndStage.Label() {
				properties.Attributes["xlabel"] += ", end: " + total.String()
			}
		})
		if err != nil && !errors.Is(err, graph.ErrVertexNotFound) {
			return errors.Wrap(err, "unable to update metrics")
		}
	}

	return nil
}

// linkCount is the number of elements produced by the source of the link. Links
// from the start vertex carry what the source stage produced.
func linkCount(metrics map[string]measure.Metric, edge graph.Edge[string]) int64 {
	name := edge.Source
	if name == model.StartStage.Label() {
		name = edge.Target
	}
	mt, ok := metrics[name]
	if !ok {
		return 0
	}

	return mt.Total()
}

func linkColour(count, maxCount int64) (string, error) {
	fraction := 0.0
	if maxCount > 0 {
		fraction = float64(count) / float64(maxCount)
	}
	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
{{range $k, $v := .Attributes}}	{{$k}}="{{$v}}";
{{end}}{{range $s := .Statements}}	"{{.Source}}"{{if .Target}} {{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.EdgeWeight}} ]{{else}} [ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}}{{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}}weight={{.SourceWeight}} ]{{end}};
{{end}}}
`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	Source           string
	Target           string
	SourceWeight     int
	EdgeWeight       int
}

func (d *DOTDrawer) dot(wrt io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   make(map[string]string),
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}
	for _, option := range d.options {
		option(&desc)
	}

	vertices, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}
	for _, vertex := range vertices {
		_, properties, err := d.store.Vertex(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := maps.Clone(properties.Attributes)
		htmlAttributes := make(map[string]string)
		if xlabel, ok := attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
			delete(attributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     properties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}
	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
