package api

import (
    "bufio"
    "encoding/json"
    "fmt"
    "io"
    "unicode"
)

// ProcessFunc handles the index-th object of a JSON stream.
type ProcessFunc func(index int, item map[string]interface{}) error

// ProcessJsonStream decodes either a JSON array of objects or a stream of
// concatenated objects from r, calling process for each in order.
func ProcessJsonStream(r io.Reader, process ProcessFunc) error {
    reader := bufio.NewReader(r)

    // Peek at the first non-whitespace byte
    for {
        b, err := reader.Peek(1)
        if err == io.EOF {
            return nil
        }
        if err != nil {
            return fmt.Errorf("error reading first byte: %w", err)
        }
        if !unicode.IsSpace(rune(b[0])) {
            break
        }
        if _, err := reader.ReadByte(); err != nil {
            return fmt.Errorf("error reading first byte: %w", err)
        }
    }

    first, _ := reader.Peek(1)
    switch first[0] {
    case '[':
        return processJsonArray(reader, process)
    default:
        return processJsonObjects(reader, process)
    }
}

func processJsonArray(reader io.Reader, process ProcessFunc) error {
    decoder := json.NewDecoder(reader)

    tok, err := decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading opening token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != '[' {
        return fmt.Errorf("expected opening [")
    }

    for index := 0; decoder.More(); index++ {
        var item map[string]interface{}
        if err := decoder.Decode(&item); err != nil {
            return fmt.Errorf("error decoding array item %d: %w", index, err)
        }

        if err := process(index, item); err != nil {
            return fmt.Errorf("error processing item %d: %w", index, err)
        }
    }

    tok, err = decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading closing token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != ']' {
        return fmt.Errorf("expected closing ]")
    }

    return nil
}

func processJsonObjects(reader io.Reader, process ProcessFunc) error {
    decoder := json.NewDecoder(reader)

    for index := 0; ; index++ {
        var item map[string]interface{}
        if err := decoder.Decode(&item); err != nil {
            if err == io.EOF {
                break
            }
            return fmt.Errorf("error decoding JSON object %d: %w", index, err)
        }

        if err := process(index, item); err != nil {
            return fmt.Errorf("error processing item %d: %w", index, err)
        }
    }

    return nil
}
