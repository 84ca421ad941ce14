package audio

import "time"

func Chunk(pcm []byte, rate int, d time.Duration) [][]byte {
	size := int(int64(rate) * int64(d) / int64(time.Second) * 2)
	if size < 2 {
		size = 2
	}

	pcm = pcm[:len(pcm)&^1]
	chunks := make([][]byte, 0, (len(pcm)+size-1)/size)
	for start := 0; start < len(pcm); start += size {
		end := min(start+size, len(pcm))
		chunks = append(chunks, pcm[start:end])
	}
	return chunks
}
