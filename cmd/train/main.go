// xent-train: softmax-regression trainer
//
// Trains a single linear layer with the softmax cross-entropy cost on
// synthetic Gaussian blobs, or on a CSV file of "features..., label" rows.
//
// Usage:
//
//	xent-train --epochs=20 --lr=0.5 --samples=120 --batch=32 --encrypted --logN=13
//	xent-train --data=iris.csv --reduction=mean --output=weights.json
//	xent-train --data=iris.csv --weights=weights.json --epochs=0
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"xent/core/ckkswrapper"
	"xent/m"
	"xent/nn"
	"xent/split"
	"xent/utils"
)

var (
	epochs       = flag.Int("epochs", 20, "Number of training epochs")
	learningRate = flag.Float64("lr", 0.5, "Learning rate")
	samples      = flag.Int("samples", 120, "Number of synthetic samples")
	features     = flag.Int("features", 4, "Input features per synthetic sample")
	classes      = flag.Int("classes", 3, "Number of classes")
	batchSize    = flag.Int("batch", 0, "Samples per gradient step (0 = full batch)")
	reduction    = flag.String("reduction", "sum", "Cost reduction: sum, mean")
	dataFile     = flag.String("data", "", "CSV training data (features..., label); synthetic if empty")
	logN         = flag.Int("logN", ckkswrapper.MinLogN, "Ring dimension log2 (13-16)")
	encrypted    = flag.Bool("encrypted", false, "Also aggregate every batch cost under CKKS")
	verbose      = flag.Bool("verbose", true, "Verbose output")
	seed         = flag.Uint64("seed", 42, "Random seed")
	outputFile   = flag.String("output", "", "Output weights file (JSON)")
	weightsFile  = flag.String("weights", "", "Start from weights saved with -output; -epochs=0 only evaluates")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	red, err := nn.ParseReduction(*reduction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg := utils.Config{
		Reduction:    red,
		Epochs:       *epochs,
		LearningRate: *learningRate,
		Samples:      *samples,
		BatchSize:    *batchSize,
		Features:     *features,
		Classes:      *classes,
		Seed:         *seed,
		Encrypted:    *encrypted,
		LogN:         *logN,
	}

	src := rand.NewSource(cfg.Seed)
	var x *mat.Dense
	var y nn.Labels
	if *dataFile != "" {
		x, y, err = loadData(*dataFile, &cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *dataFile, err)
			os.Exit(1)
		}
	}
	if err := utils.ValidateConfig(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 Softmax Cross-Entropy Trainer                ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Epochs:        %d\n", cfg.Epochs)
	fmt.Printf("  Learning Rate: %.4f\n", cfg.LearningRate)
	fmt.Printf("  Samples:       %d\n", cfg.Samples)
	fmt.Printf("  Batch:         %d\n", cfg.Batch())
	fmt.Printf("  Features:      %d\n", cfg.Features)
	fmt.Printf("  Classes:       %d\n", cfg.Classes)
	fmt.Printf("  Reduction:     %s\n", cfg.Reduction)
	fmt.Printf("  Encrypted:     %v\n", cfg.Encrypted)
	if cfg.Encrypted {
		fmt.Printf("  LogN:          %d\n", cfg.LogN)
	}
	fmt.Println()

	if x == nil {
		fmt.Printf("Generating %d synthetic samples...\n", cfg.Samples)
		x, y = generateData(cfg.Samples, cfg.Features, cfg.Classes, src)
	}

	var he *heSession
	if cfg.Encrypted {
		fmt.Println("Initializing HE context...")
		start := time.Now()
		heCtx, err := ckkswrapper.NewHeContext(cfg.LogN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		he = newHeSession(heCtx, y, cfg.Batch())
		fmt.Printf("HE initialization: %.2fs\n", time.Since(start).Seconds())
	}

	var layer *nn.Linear
	if *weightsFile != "" {
		fmt.Printf("Loading weights from %s...\n", *weightsFile)
		layer, err = utils.LoadLinear(*weightsFile, "softmax", cfg.Features, cfg.Classes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
			os.Exit(1)
		}
	} else {
		layer = nn.NewLinear(cfg.Features, cfg.Classes, src)
	}
	ce := nn.CrossEntropyLoss{Reduction: cfg.Reduction}

	fmt.Println("\nStarting training...")
	stats := &utils.TimingStats{}
	steps := 0
	totalStart := time.Now()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		epochStart := time.Now()
		lossSum := 0.0
		var heSum *rlwe.Ciphertext

		for b := 0; ; b++ {
			start, end, ok := m.BatchRange(cfg.Samples, cfg.Batch(), b)
			if !ok {
				break
			}
			xb := x.Slice(start, end, 0, cfg.Features).(*mat.Dense)
			yb := y[start:end]

			cost, ct, err := trainStep(b, layer, &ce, xb, yb, cfg.LearningRate, he, stats)
			if err == nil && ct != nil {
				heSum, err = he.ctx.Accumulate(heSum, ct)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error at epoch %d, batch %d: %v\n", epoch+1, b, err)
				os.Exit(1)
			}
			if cfg.Reduction == nn.Mean {
				cost *= float64(len(yb))
			}
			lossSum += cost
			steps++
		}

		epochCost := lossSum
		if cfg.Reduction == nn.Mean {
			epochCost /= float64(cfg.Samples)
		}
		fmt.Printf("Epoch %d/%d | Cost: %.6f | Time: %.3fs\n",
			epoch+1, cfg.Epochs, epochCost, time.Since(epochStart).Seconds())

		if heSum != nil {
			start := time.Now()
			total, err := he.ctx.DecryptScalar(heSum)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			stats.DecryptionTime += time.Since(start)
			fmt.Printf("  HE epoch loss: %.6f vs %.6f plaintext (diff %.2e)\n",
				total, lossSum, math.Abs(total-lossSum))
		}
	}

	stats.TotalTime = time.Since(totalStart)
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", stats.TotalTime.Seconds())

	if he != nil {
		if err := he.close(); err != nil {
			fmt.Fprintf(os.Stderr, "Label holder: %v\n", err)
			os.Exit(1)
		}
	}

	cost, acc, err := evaluate(layer, &ce, x, y)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cost: %.6f | Accuracy: %.2f%%\n", cost, acc*100)

	utils.PrintTimingStats(stats, steps)

	if *outputFile != "" {
		fmt.Printf("\nSaving weights to %s...\n", *outputFile)
		if err := utils.SaveWeights(*outputFile, utils.LinearWeights("softmax", layer)); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done!")
	}
}

// loadData reads and standardizes a CSV file, then sizes cfg to it.
func loadData(path string, cfg *utils.Config) (*mat.Dense, nn.Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	x, labels, err := m.ReadLabeled(f)
	if err != nil {
		return nil, nil, err
	}
	m.Standardize(x)

	y := nn.Labels(labels)
	cfg.Samples, cfg.Features = x.Dims()
	for _, l := range y {
		if l+1 > cfg.Classes {
			cfg.Classes = l + 1
		}
	}
	return x, y, nil
}

// generateData draws one unit Gaussian blob per class, each centred on a
// uniform point of [-3, 3]^features.
func generateData(n, features, classes int, src rand.Source) (*mat.Dense, nn.Labels) {
	centre := distuv.Uniform{Min: -3, Max: 3, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	pick := rand.New(src)

	centres := mat.NewDense(classes, features, nil)
	for i := 0; i < classes; i++ {
		for j := 0; j < features; j++ {
			centres.Set(i, j, centre.Rand())
		}
	}

	x := mat.NewDense(n, features, nil)
	y := make(nn.Labels, n)
	for i := 0; i < n; i++ {
		y[i] = pick.Intn(classes)
		for j := 0; j < features; j++ {
			x.Set(i, j, centres.At(y[i], j)+noise.Rand())
		}
	}
	return x, y
}

// trainStep runs one gradient step on batch b and returns the cost before it.
// With an HE session it also returns the encrypted summed loss of the batch.
func trainStep(b int, layer *nn.Linear, ce *nn.CrossEntropyLoss, x *mat.Dense, y nn.Labels, lr float64,
	he *heSession, stats *utils.TimingStats) (float64, *rlwe.Ciphertext, error) {
	start := time.Now()
	z, err := layer.Forward(x)
	if err != nil {
		return 0, nil, err
	}
	stats.ForwardTime += time.Since(start)

	start = time.Now()
	cost, cache, err := ce.Cost(z, y)
	if err != nil {
		return 0, nil, err
	}
	stats.CostTime += time.Since(start)

	var ct *rlwe.Ciphertext
	if he != nil {
		if ct, err = he.batchCost(b, z, len(y), stats); err != nil {
			return 0, nil, err
		}
	}

	start = time.Now()
	dW, db, err := ce.Gradient(x, cache, y)
	if err != nil {
		return 0, nil, err
	}
	stats.GradientTime += time.Since(start)

	start = time.Now()
	if err := layer.Update(dW, db, lr); err != nil {
		return 0, nil, err
	}
	stats.UpdateTime += time.Since(start)

	return cost, ct, nil
}

// heSession runs the label holder in its own goroutine. Scores go to it over
// one pipe and encrypted batch costs come back over the other.
type heSession struct {
	ctx    *ckkswrapper.HeContext
	scores *split.Protocol
	done   <-chan error
}

func newHeSession(ctx *ckkswrapper.HeContext, y nn.Labels, batch int) *heSession {
	scoresR, scoresW := io.Pipe()
	costR, costW := io.Pipe()

	holder := &split.LabelHolder{
		HE: ctx,
		Labels: func(batchID int) (nn.Labels, error) {
			start, end, ok := m.BatchRange(len(y), batch, batchID)
			if !ok {
				return nil, fmt.Errorf("no batch %d", batchID)
			}
			return y[start:end], nil
		},
	}
	done := make(chan error, 1)
	go func() {
		err := holder.Serve(split.NewProtocol(scoresR, costW))
		costW.CloseWithError(err)
		done <- err
	}()

	return &heSession{ctx: ctx, scores: split.NewProtocol(costR, scoresW), done: done}
}

// batchCost hands the scores of batch b to the label holder and returns the
// encrypted summed loss it sends back.
func (s *heSession) batchCost(b int, z *mat.Dense, samples int, stats *utils.TimingStats) (*rlwe.Ciphertext, error) {
	start := time.Now()
	payload, ct, err := s.scores.ExchangeCost(b, z)
	if err != nil {
		return nil, err
	}
	stats.EncryptionTime += time.Since(start)

	if payload.Samples != samples {
		return nil, fmt.Errorf("batch %d: cost covers %d samples, expected %d", b, payload.Samples, samples)
	}
	return ct, nil
}

// close tells the label holder to stop and waits for it.
func (s *heSession) close() error {
	if err := s.scores.SendDone(); err != nil {
		return err
	}
	return <-s.done
}

func evaluate(layer *nn.Linear, ce *nn.CrossEntropyLoss, x *mat.Dense, y nn.Labels) (cost, acc float64, err error) {
	z, err := layer.Forward(x)
	if err != nil {
		return 0, 0, err
	}
	cost, _, err = ce.Cost(z, y)
	if err != nil {
		return 0, 0, err
	}
	pred := nn.LabelsFromOneHot(z)
	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}
	return cost, float64(correct) / float64(len(y)), nil
}
