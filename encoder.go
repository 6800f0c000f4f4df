package text2img_gan

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash/fnv"
	"math/big"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

type HashType int

const (
	HASH_FNV32A = HashType(iota + 1)
	HASH_FNV64A
	HASH_SHA256
	HASH_SHA512
	HASH_MD5
)

var hashNames = map[HashType]string{
	HASH_FNV32A: "fnv32a",
	HASH_FNV64A: "fnv64a",
	HASH_SHA256: "sha256",
	HASH_SHA512: "sha512",
	HASH_MD5:    "md5",
}

func (ht HashType) String() string {
	if name, ok := hashNames[ht]; ok {
		return name
	}
	return fmt.Sprintf("HashType(%d)", int(ht))
}

// ParseHashType Parses hash name as it's written in config files
func ParseHashType(s string) (HashType, error) {
	for ht, name := range hashNames {
		if strings.EqualFold(name, s) {
			return ht, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "hash type '%s' is not handled yet", s)
}

var wordsRegexp = regexp.MustCompile(`[^\s!,.?":;0-9]+`)

// SplitWords Splits sentence into lowercase words (digits and punctuation are separators)
func SplitWords(sentence string) []string {
	words := wordsRegexp.FindAllString(sentence, -1)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return words
}

// HashingTrick Maps every word of sentence to bucket in [0, vocab)
func HashingTrick(sentence string, vocab int, ht HashType) ([]int64, error) {
	if vocab <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "vocabulary size must be positive, got %d", vocab)
	}
	words := SplitWords(sentence)
	ans := make([]int64, len(words))
	for i, word := range words {
		bucket, err := hashBucket(word, vocab, ht)
		if err != nil {
			return nil, err
		}
		ans[i] = bucket
	}
	return ans, nil
}

func hashBucket(word string, vocab int, ht HashType) (int64, error) {
	var hashed *big.Int
	switch ht {
	case HASH_FNV32A:
		h := fnv.New32a()
		h.Write([]byte(word))
		hashed = new(big.Int).SetUint64(uint64(h.Sum32()))
	case HASH_FNV64A:
		h := fnv.New64a()
		h.Write([]byte(word))
		hashed = new(big.Int).SetUint64(h.Sum64())
	case HASH_SHA256:
		sum := sha256.Sum256([]byte(word))
		hashed = new(big.Int).SetBytes(sum[:])
	case HASH_SHA512:
		sum := sha512.Sum512([]byte(word))
		hashed = new(big.Int).SetBytes(sum[:])
	case HASH_MD5:
		sum := md5.Sum([]byte(word))
		hashed = new(big.Int).SetBytes(sum[:])
	default:
		return 0, errors.Wrapf(ErrInvalidConfig, "hash type of '%d' is not handled yet", ht)
	}
	return new(big.Int).Mod(hashed, big.NewInt(int64(vocab))).Int64(), nil
}

// TextEncoder Turns free text into fixed-size feature row (normalized bag of hashed words)
type TextEncoder struct {
	Vocabulary int
	Hash       HashType
}

func (e TextEncoder) validate() error {
	if e.Vocabulary <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "vocabulary size must be positive, got %d", e.Vocabulary)
	}
	if _, ok := hashNames[e.Hash]; !ok {
		return errors.Wrapf(ErrInvalidConfig, "hash type of '%d' is not handled yet", e.Hash)
	}
	return nil
}

// Encode Returns Vocabulary-sized row. Each word adds 1/len(words) to its bucket, so non-empty text sums to 1.
func (e TextEncoder) Encode(text string) ([]float64, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	buckets, err := HashingTrick(text, e.Vocabulary, e.Hash)
	if err != nil {
		return nil, err
	}
	row := make([]float64, e.Vocabulary)
	if len(buckets) == 0 {
		return row, nil
	}
	weight := 1.0 / float64(len(buckets))
	for _, b := range buckets {
		row[b] += weight
	}
	return row, nil
}

// EncodeBatch Returns (len(texts), Vocabulary) tensor
func (e TextEncoder) EncodeBatch(texts []string) (*tensor.Dense, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "no texts to encode")
	}
	data := make([]float64, 0, len(texts)*e.Vocabulary)
	for i, text := range texts {
		row, err := e.Encode(text)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't encode text #%d", i)
		}
		data = append(data, row...)
	}
	return tensor.New(tensor.WithShape(len(texts), e.Vocabulary), tensor.WithBacking(data)), nil
}
