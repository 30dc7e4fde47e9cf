// Package report extracts totals from report data and renders them as metric
// lines or as a Prometheus textfile.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

// ErrNoTotalSeries is returned when report data has no TOTAL series.
var ErrNoTotalSeries = errors.New("report has no TOTAL series")

// Carbon footprint output names.
const (
	CarbonMeasurement = "Carbon_Report"
	CarbonField       = "emissions"
)

// TotalSum returns summary.sum of the first series whose subject type is TOTAL.
func TotalSum(data *api.ReportData) (float64, error) {
	if data == nil {
		return 0, ErrNoTotalSeries
	}
	for _, s := range data.Series {
		if s.Subject.Type == api.SubjectTypeTotal {
			return s.Summary.Sum, nil
		}
	}
	return 0, ErrNoTotalSeries
}

// Round rounds v to the given number of decimal places. The exact binary
// value of v is rounded and exact ties go to even, so 2.675 becomes 2.67 and
// 0.125 becomes 0.12.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Point is a single measurement with one field.
type Point struct {
	Measurement string
	Tags        map[string]string
	Field       string
	Value       float64
}

// CarbonPoint builds the carbon footprint point from report data, rounded to
// two decimals.
func CarbonPoint(data *api.ReportData) (Point, error) {
	sum, err := TotalSum(data)
	if err != nil {
		return Point{}, err
	}
	return Point{
		Measurement: CarbonMeasurement,
		Tags:        map[string]string{"name": "Total"},
		Field:       CarbonField,
		Value:       Round(sum, 2),
	}, nil
}

var (
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
	tagEscaper         = strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)
)

// Line renders the point in line protocol, e.g.
// "Carbon_Report,name=Total emissions=707.0". Tags are sorted by key.
func (p Point) Line() string {
	var b strings.Builder
	b.WriteString(measurementEscaper.Replace(p.Measurement))

	keys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ",%s=%s", tagEscaper.Replace(k), tagEscaper.Replace(p.Tags[k]))
	}

	fmt.Fprintf(&b, " %s=%s", tagEscaper.Replace(p.Field), FormatValue(p.Value))
	return b.String()
}

// FormatValue prints v in its shortest form with at least one decimal, so
// 707 renders as "707.0".
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// MetricName maps a point to a Prometheus metric name,
// e.g. carbon_report_emissions.
func (p Point) MetricName() string {
	name := strings.ToLower(p.Measurement + "_" + p.Field)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == ':' {
			return r
		}
		return '_'
	}, name)
}

// WriteTextfile writes points as gauges to path in the Prometheus text format,
// suitable for the node exporter textfile collector.
func WriteTextfile(path string, points ...Point) error {
	reg := prometheus.NewRegistry()
	gauges := make(map[string]*prometheus.GaugeVec)

	for _, p := range points {
		name := p.MetricName()
		labels := make([]string, 0, len(p.Tags))
		for k := range p.Tags {
			labels = append(labels, k)
		}
		sort.Strings(labels)

		vec, ok := gauges[name]
		if !ok {
			vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: name,
				Help: fmt.Sprintf("%s %s from Compute Ops Management reports.", p.Measurement, p.Field),
			}, labels)
			if err := reg.Register(vec); err != nil {
				return fmt.Errorf("register %s: %w", name, err)
			}
			gauges[name] = vec
		}

		g, err := vec.GetMetricWith(prometheus.Labels(p.Tags))
		if err != nil {
			return fmt.Errorf("metric %s: %w", name, err)
		}
		g.Set(p.Value)
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write textfile: %w", err)
	}
	return nil
}
