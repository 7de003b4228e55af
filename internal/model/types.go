package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is a pre-trained feed-forward network artifact. Neurons are stored in
// evaluation order; InputIDs and OutputIDs fix the order of the feature vector
// and of the network outputs.
type Genome struct {
	VersionedRecord
	ID        string    `json:"id"`
	Neurons   []Neuron  `json:"neurons"`
	Synapses  []Synapse `json:"synapses"`
	InputIDs  []string  `json:"input_ids"`
	OutputIDs []string  `json:"output_ids"`
}

type Neuron struct {
	ID         string  `json:"id"`
	Activation string  `json:"activation"`
	Bias       float64 `json:"bias"`
}

type Synapse struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// TrajectoryRecord is the persisted form of a trajectory: three parallel
// sample sequences in index order.
type TrajectoryRecord struct {
	VersionedRecord
	ID   string    `json:"id"`
	Word string    `json:"word,omitempty"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	T    []float64 `json:"t"`
}

// RunRecord describes one fitness evaluation run and its merged result.
type RunRecord struct {
	VersionedRecord
	RunID        string        `json:"run_id"`
	CreatedAtUTC string        `json:"created_at_utc"`
	Model        string        `json:"model"`
	Method       string        `json:"method"`
	Seed         int64         `json:"seed"`
	Workers      int           `json:"workers"`
	Words        int           `json:"words"`
	Result       FitnessResult `json:"result"`
}
