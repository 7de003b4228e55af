package inputmodel

import (
	"fmt"
	"math"
	"os"

	"swypesim/internal/keyboard"
	"swypesim/internal/model"
	"swypesim/internal/nn"
	"swypesim/internal/storage"
	"swypesim/internal/trajectory"
)

// NeuralNetworkModel draws traces like InterpolationModel but scores them with
// a pre-trained network that maps the normalised differences between two
// traces to a distance.
type NeuralNetworkModel struct {
	*InterpolationModel
	net *nn.Network
}

// NewNeuralNetworkModel loads the network artifact at filename. The artifact's
// input count must match the feature layout implied by params.
func NewNeuralNetworkModel(filename string, params Params) (*NeuralNetworkModel, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: read network %s: %v", model.ErrInvalidInput, filename, err)
	}
	genome, err := storage.DecodeGenome(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode network %s: %v", model.ErrInvalidInput, filename, err)
	}
	return NewNeuralNetworkModelFromGenome(genome, params)
}

func NewNeuralNetworkModelFromGenome(genome model.Genome, params Params) (*NeuralNetworkModel, error) {
	base, err := NewInterpolationModel(params)
	if err != nil {
		return nil, err
	}
	net, err := nn.Compile(genome)
	if err != nil {
		return nil, err
	}
	m := &NeuralNetworkModel{InterpolationModel: base, net: net}
	if got, want := net.InputCount(), m.InputCount(); got != want {
		return nil, fmt.Errorf("%w: network %s takes %d inputs, model produces %d",
			model.ErrInvalidInput, genome.ID, got, want)
	}
	return m, nil
}

// InputCount is the length of the feature vector built by CreateInputs.
func (m *NeuralNetworkModel) InputCount() int {
	n := 2 * m.params.VectorLength
	if m.params.Loop {
		n++
	}
	return n
}

func (m *NeuralNetworkModel) WithSeed(seed int64) *NeuralNetworkModel {
	return &NeuralNetworkModel{InterpolationModel: m.InterpolationModel.WithSeed(seed), net: m.net}
}

func (m *NeuralNetworkModel) Reseed(seed int64) InputModel {
	return m.WithSeed(seed)
}

// CreateInputs lays out the normalised differences as [u0..uN-1, w0..wN-1].
// With loop detection on, the difference in total turning of the two traces
// follows as one extra feature.
func (m *NeuralNetworkModel) CreateInputs(v1, v2 *trajectory.Trajectory) ([]float64, error) {
	u, w, err := features(m.params, v1, v2)
	if err != nil {
		return nil, err
	}
	inputs := make([]float64, 0, m.InputCount())
	inputs = append(inputs, u...)
	inputs = append(inputs, w...)
	if m.params.Loop {
		inputs = append(inputs, v2.TotalTurning()-v1.TotalTurning())
	}
	return inputs, nil
}

// VectorDistance is the first network output for the pair.
func (m *NeuralNetworkModel) VectorDistance(v1, v2 *trajectory.Trajectory) (float64, error) {
	inputs, err := m.CreateInputs(v1, v2)
	if err != nil {
		return 0, err
	}
	out, err := m.net.Evaluate(inputs)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Distance is the network distance from the ideal trace of word, floored at 0.
func (m *NeuralNetworkModel) Distance(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error) {
	ideal, err := m.IdealVector(word, kb)
	if err != nil {
		return 0, err
	}
	d, err := m.VectorDistance(ideal, observed)
	if err != nil {
		return 0, err
	}
	return math.Max(0, d), nil
}

func (m *NeuralNetworkModel) MarginalProbability(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error) {
	d, err := m.Distance(observed, word, kb)
	if err != nil {
		return 0, err
	}
	return math.Exp(-d), nil
}
