package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/anthropics/yajbe/codec"
)

func main() {
	doc := map[string]any{
		"device":  "sensor-17",
		"online":  true,
		"reading": 21.5,
		"samples": []any{int64(20), int64(21), int64(23)},
		"meta": map[string]any{
			"device": "sensor-17",
			"seq":    int64(48213),
		},
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("encoded %d bytes:\n%s", len(data), hex.Dump(data))

	back, err := codec.Unmarshal(data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("decoded: %v\n", back)
}
