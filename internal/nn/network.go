package nn

import (
	"fmt"
	"math"
	"strings"

	"swypesim/internal/model"
)

// Network is a genome resolved into index form for repeated evaluation. It is
// read-only after Compile and safe for concurrent use.
type Network struct {
	id      string
	nodes   []node
	inputs  []int
	outputs []int
}

type node struct {
	bias       float64
	activation ActivationFunc
	fixed      bool
	incoming   []edge
}

type edge struct {
	from   int
	weight float64
}

// Compile resolves neuron references and activations. Every input and output
// id must name a neuron, and synapses must only feed forward in neuron order.
func Compile(genome model.Genome) (*Network, error) {
	if len(genome.InputIDs) == 0 || len(genome.OutputIDs) == 0 {
		return nil, fmt.Errorf("%w: genome %s needs input and output neurons", model.ErrInvalidInput, genome.ID)
	}

	index := make(map[string]int, len(genome.Neurons))
	for i, neuron := range genome.Neurons {
		if _, dup := index[neuron.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate neuron %s", model.ErrInvalidInput, neuron.ID)
		}
		index[neuron.ID] = i
	}

	net := &Network{id: genome.ID, nodes: make([]node, len(genome.Neurons))}
	for i, neuron := range genome.Neurons {
		net.nodes[i].bias = neuron.Bias
	}

	for _, id := range genome.InputIDs {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown input neuron %s", model.ErrInvalidInput, id)
		}
		net.nodes[i].fixed = true
		net.inputs = append(net.inputs, i)
	}
	for _, id := range genome.OutputIDs {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown output neuron %s", model.ErrInvalidInput, id)
		}
		net.outputs = append(net.outputs, i)
	}

	for i, neuron := range genome.Neurons {
		if net.nodes[i].fixed {
			continue
		}
		fn, err := GetActivation(neuron.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: neuron %s: %v (known: %s)",
				model.ErrInvalidInput, neuron.ID, err, strings.Join(ListActivations(), ", "))
		}
		net.nodes[i].activation = fn
	}

	for _, synapse := range genome.Synapses {
		if !synapse.Enabled {
			continue
		}
		from, ok := index[synapse.From]
		if !ok {
			return nil, fmt.Errorf("%w: synapse %s from unknown neuron %s", model.ErrInvalidInput, synapse.ID, synapse.From)
		}
		to, ok := index[synapse.To]
		if !ok {
			return nil, fmt.Errorf("%w: synapse %s to unknown neuron %s", model.ErrInvalidInput, synapse.ID, synapse.To)
		}
		if from >= to {
			return nil, fmt.Errorf("%w: synapse %s is recurrent", model.ErrInvalidInput, synapse.ID)
		}
		net.nodes[to].incoming = append(net.nodes[to].incoming, edge{from: from, weight: synapse.Weight})
	}
	return net, nil
}

func (n *Network) ID() string { return n.id }

func (n *Network) InputCount() int { return len(n.inputs) }

func (n *Network) OutputCount() int { return len(n.outputs) }

// Evaluate runs one forward pass. The result holds one value per output id in
// genome order.
func (n *Network) Evaluate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputs) {
		return nil, fmt.Errorf("%w: network %s expects %d inputs, got %d", model.ErrInvalidInput, n.id, len(n.inputs), len(inputs))
	}

	values := make([]float64, len(n.nodes))
	for i, idx := range n.inputs {
		values[idx] = inputs[i]
	}
	for i := range n.nodes {
		nd := &n.nodes[i]
		if nd.fixed {
			continue
		}
		total := nd.bias
		for _, e := range nd.incoming {
			total += values[e.from] * e.weight
		}
		values[i] = nd.activation(Saturation(total))
	}

	out := make([]float64, len(n.outputs))
	for i, idx := range n.outputs {
		v := values[idx]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: network %s output %d is %v", model.ErrNumericDegenerate, n.id, i, v)
		}
		out[i] = v
	}
	return out, nil
}
