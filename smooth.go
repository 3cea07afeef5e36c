package canolib

// 对byte类别栅格做window×window中值滤波，边界按镜像方式延拓，输出尺寸不变。
// 类别值为byte，用256档直方图取中值，无需排序。均匀输入是滤波不动点。
func MedianSmooth(data []uint8, width, height, window int) []uint8 {
	if window < 3 || window%2 == 0 || len(data) != width*height {
		out := make([]uint8, len(data))
		copy(out, data)
		return out
	}
	half := window / 2
	mid := (window*window + 1) / 2
	out := make([]uint8, len(data))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var hist [256]int
			for dy := -half; dy <= half; dy++ {
				ry := reflectIdx(y+dy, height)
				row := ry * width
				for dx := -half; dx <= half; dx++ {
					hist[data[row+reflectIdx(x+dx, width)]]++
				}
			}
			cum := 0
			for v := 0; v < 256; v++ {
				cum += hist[v]
				if cum >= mid {
					out[y*width+x] = uint8(v)
					break
				}
			}
		}
	}
	return out
}

// 镜像延拓下标：(d c b a | a b c d | d c b a)
func reflectIdx(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - 1 - i
		}
	}
	return i
}
