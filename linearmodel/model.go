package linearmodel

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"
)

// Regression is implemented by fitted linear models that map observations to responses
type Regression interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Intercept() float64
	Coef() []float64
	Parameters() []float64
}

var _ Regression = (*OLSRegression)(nil)

// Model represents a serializeable format of a fitted regression storing the parameter vector
// and optional feature labels
type Model struct {
	Labels     []string  `json:"labels,omitempty"`
	Parameters []float64 `json:"parameters"`
}

// Model returns the serializeable form of the regression. labels may be nil, otherwise it
// must name every feature.
func (o *OLSRegression) Model(labels []string) (Model, error) {
	if !o.fitted {
		return Model{}, ErrNotFitted
	}
	if labels != nil && len(labels) != len(o.coef) {
		return Model{}, fmt.Errorf("got %d labels for %d coefficients, %w", len(labels), len(o.coef), ErrLabelLenMismatch)
	}
	return Model{
		Labels:     labels,
		Parameters: o.Parameters(),
	}, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1*x1 + m2*x2 + ...
func (o *OLSRegression) ModelEq(labels []string) (string, error) {
	m, err := o.Model(labels)
	if err != nil {
		return "", err
	}
	return m.Eq(), nil
}

// label returns the feature name of coefficient i, falling back to x1, x2, ...
func (m Model) label(i int) string {
	if i < len(m.Labels) && m.Labels[i] != "" {
		return m.Labels[i]
	}
	return fmt.Sprintf("x%d", i+1)
}

// Eq renders the model as y ~ b + m1*x1 + ... skipping zero coefficients
func (m Model) Eq() string {
	if len(m.Parameters) == 0 {
		return "y ~ 0.00"
	}

	var sb strings.Builder
	sb.WriteString("y ~ ")
	sb.WriteString(fmt.Sprintf("%.2f", m.Parameters[0]))
	for i, w := range m.Parameters[1:] {
		if w == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("+%.2f*%s", w, m.label(i)))
	}
	return sb.String()
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}

// TablePrint writes the intercept and coefficients as an aligned table
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sOLS Regression:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sFeatures: %d\n", prefix, indentExpand(indent, 1), max(len(m.Parameters)-1, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sWeights:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sFeature\tValue\t\n", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}

	intercept := 0.0
	if len(m.Parameters) > 0 {
		intercept = m.Parameters[0]
	}
	if _, err := fmt.Fprintf(tbl, "%s%sIntercept\t%.3f\t\n", prefix, indentExpand(indent, 1), intercept); err != nil {
		return err
	}

	for i := 1; i < len(m.Parameters); i++ {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.3f\t\n",
			prefix, indentExpand(indent, 1),
			m.label(i-1), m.Parameters[i]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
