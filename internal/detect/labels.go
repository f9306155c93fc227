package detect

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ClassNames maps model class ids to the label names the model was
// trained on. The mapping is built once at model load time and treated
// as read only afterwards.
type ClassNames []string

// Name returns the label for the given class id. Ids outside the labels
// file fall back to "class_{id}".
func (c ClassNames) Name(id int) string {

	if id >= 0 && id < len(c) {
		return c[id]
	}

	return fmt.Sprintf("class_%d", id)
}

// LoadLabels reads the labels used to train the model from the given text
// file. It should contain one label per line.
func LoadLabels(file string) (ClassNames, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels ClassNames

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}
