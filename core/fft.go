package core

import "math"

// FFT computes the discrete Fourier transform of a real-valued signal using
// the Cooley-Tukey algorithm.
//
// Any periodic signal can be decomposed into a sum of sine and cosine waves
// at different frequencies. The direct DFT computes this decomposition in
// O(N^2) time; Cooley-Tukey's 1965 divide-and-conquer algorithm brings that
// down to O(N log N) by recursively splitting the input into even- and
// odd-indexed halves, transforming each half independently, and recombining
// them with a "butterfly": a complex rotation (the twiddle factor
// e^(-2*pi*i*k/N)) applied to the odd half before it is added to and
// subtracted from the even half.
//
// For a signal x[n] of length N, splitting the DFT sum into even and odd
// indices gives:
//
//	X[k]       = E[k] + W^k * O[k]   for k = 0 .. N/2-1
//	X[k + N/2] = E[k] - W^k * O[k]
//
// where E[k] and O[k] are the N/2-point DFTs of the even and odd samples
// and W^k = e^(-2*pi*i*k/N) is the twiddle factor.
//
// Requires len(input) to be a power of two; the spectral analyzer always
// calls it with a fixed, power-of-two frame length.
func FFT(input []float64) []complex128 {
	complexArray := make([]complex128, len(input))
	for k, v := range input {
		complexArray[k] = complex(v, 0)
	}
	return recursiveFFT(complexArray)
}

func recursiveFFT(input []complex128) []complex128 {
	n := len(input)
	if n <= 1 {
		return input
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = input[2*i]
		odd[i] = input[2*i+1]
	}

	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		twiddle := complex(math.Cos(angle), math.Sin(angle)) * odd[k]
		result[k] = even[k] + twiddle
		result[k+n/2] = even[k] - twiddle
	}

	return result
}
